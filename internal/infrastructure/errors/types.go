package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies application errors for logging and retry decisions
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeConnection
	ErrCodeTransaction
	ErrCodeTimeout
	ErrCodeValidation
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeInternal
	ErrCodeBusy
	ErrCodeSchema

	// Context menu subsystem
	ErrCodeMenuNotPrepared
	ErrCodeHandleUnavailable
	ErrCodeBuildFailure
	ErrCodePopupActive
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotFound:          "NOT_FOUND",
	ErrCodeDuplicate:         "DUPLICATE",
	ErrCodeConstraint:        "CONSTRAINT",
	ErrCodeConnection:        "CONNECTION",
	ErrCodeTransaction:       "TRANSACTION",
	ErrCodeTimeout:           "TIMEOUT",
	ErrCodeValidation:        "VALIDATION",
	ErrCodePermission:        "PERMISSION",
	ErrCodeDiskSpace:         "DISK_SPACE",
	ErrCodeCorruption:        "CORRUPTION",
	ErrCodeInternal:          "INTERNAL",
	ErrCodeBusy:              "BUSY",
	ErrCodeSchema:            "SCHEMA",
	ErrCodeMenuNotPrepared:   "MENU_NOT_PREPARED",
	ErrCodeHandleUnavailable: "HANDLE_UNAVAILABLE",
	ErrCodeBuildFailure:      "BUILD_FAILURE",
	ErrCodePopupActive:       "POPUP_ACTIVE",
}

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// RepositoryError represents a settings-store error with context and retry information
type RepositoryError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is retryable
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *RepositoryError) Error() string {
	if e == nil {
		return "repository error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}
	if e.Retryable {
		parts = append(parts, "retryable=true")
	}
	parts = append(parts, sortedContext(e.Context)...)

	return describe(e.Err, "repository error", parts)
}

func (e *RepositoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *RepositoryError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*RepositoryError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *RepositoryError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *RepositoryError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *RepositoryError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *RepositoryError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewRepositoryError creates a new repository error with the given parameters
func NewRepositoryError(op string, err error, code ErrorCode) *RepositoryError {
	return &RepositoryError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableError(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewRepositoryErrorWithContext creates a new repository error with additional context
func NewRepositoryErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *RepositoryError {
	repoErr := NewRepositoryError(op, err, code)
	repoErr.Context = cloneContext(context)
	return repoErr
}

// isRetryableError determines if an error is retryable based on its type
func isRetryableError(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeTransaction, ErrCodeBusy:
		return true
	case ErrCodeUnknown:
		if err == nil {
			return false
		}
		errStr := strings.ToLower(err.Error())
		return strings.Contains(errStr, "temporary") ||
			strings.Contains(errStr, "retry") ||
			strings.Contains(errStr, "busy") ||
			strings.Contains(errStr, "locked")
	default:
		return false
	}
}

// codeOf extracts the code of any coded error in the chain
func codeOf(err error) (ErrorCode, bool) {
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Code, true
	}
	var menuErr *MenuError
	if errors.As(err, &menuErr) {
		return menuErr.Code, true
	}
	return ErrCodeUnknown, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	got, ok := codeOf(err)
	return ok && got == code
}

// IsNotFound checks if the error is a "not found" error
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsBusy checks if the error is a busy/locked error
func IsBusy(err error) bool { return HasCode(err, ErrCodeBusy) }

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return HasCode(err, ErrCodeValidation) }

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Retryable
	}
	var menuErr *MenuError
	if errors.As(err, &menuErr) {
		return menuErr.IsRetryable()
	}
	return false
}

func sortedContext(context map[string]string) []string {
	if len(context) == 0 {
		return nil
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, context[k]))
	}
	return parts
}

func describe(err error, fallback string, parts []string) string {
	suffix := ""
	if len(parts) > 0 {
		suffix = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}
	if err != nil {
		return err.Error() + suffix
	}
	return fallback + suffix
}

func cloneContext(context map[string]string) map[string]string {
	out := make(map[string]string, len(context))
	for k, v := range context {
		out[k] = v
	}
	return out
}
