package errors

import (
	"context"
	"database/sql"
	"errors"
)

// ClassifyError maps an error from the settings store to an ErrorCode
func ClassifyError(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrCodeUnknown
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, sql.ErrConnDone):
		return ErrCodeConnection
	case errors.Is(err, sql.ErrTxDone):
		return ErrCodeTransaction
	}
	return classifySQLiteError(err)
}

// WrapDatabaseError classifies err and wraps it for op. It returns nil for a
// nil err so callers can wrap unconditionally.
func WrapDatabaseError(op string, err error) error {
	return WrapDatabaseErrorWithContext(op, err, nil)
}

// WrapDatabaseErrorWithContext is WrapDatabaseError with extra context
func WrapDatabaseErrorWithContext(op string, err error, contextMap map[string]string) error {
	if err == nil {
		return nil
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		// already classified by a nested store call
		return err
	}
	return NewRepositoryErrorWithContext(op, err, ClassifyError(err), contextMap)
}

// HandleNotFound reports a missing preference, history entry or window state
func HandleNotFound(op string, resource string, identifier string) error {
	return storeError(op, sql.ErrNoRows, ErrCodeNotFound, "resource", resource, "identifier", identifier)
}

// HandleValidationError reports a value the store refuses to write
func HandleValidationError(op string, field string, value string, reason string) error {
	return storeError(op, errors.New("validation failed"), ErrCodeValidation, "field", field, "value", value, "reason", reason)
}

// HandleConnectionError reports a store that is not open or could not be opened
func HandleConnectionError(op string, details string) error {
	return storeError(op, errors.New("connection error"), ErrCodeConnection, "details", details)
}

// storeError builds a RepositoryError from key/value context pairs
func storeError(op string, cause error, code ErrorCode, kv ...string) error {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return NewRepositoryErrorWithContext(op, cause, code, fields)
}
