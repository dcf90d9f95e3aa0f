package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel causes for the menu error taxonomy
var (
	ErrMenuNotPrepared   = errors.New("menu not prepared for this window")
	ErrHandleUnavailable = errors.New("window handle not available")
	ErrPopupActive       = errors.New("popup already showing for this window")
)

// MenuError is returned by the context menu subsystem. Every failure names
// the window it concerns so callers can log it without extra context.
type MenuError struct {
	Op        string
	WindowID  string
	Code      ErrorCode
	Err       error
	Context   map[string]string
	Timestamp time.Time
}

func (e *MenuError) Error() string {
	if e == nil {
		return "menu error"
	}
	parts := []string{fmt.Sprintf("op=%s", e.Op), fmt.Sprintf("window=%s", e.WindowID)}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}
	parts = append(parts, sortedContext(e.Context)...)
	return describe(e.Err, "menu error", parts)
}

func (e *MenuError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches other menu errors by code and falls through to the cause
func (e *MenuError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*MenuError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable reports whether repeating the call can succeed without other
// changes. A window that is not realized yet becomes realized on its own.
func (e *MenuError) IsRetryable() bool {
	return e != nil && e.Code == ErrCodeHandleUnavailable
}

func (e *MenuError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

func (e *MenuError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

func (e *MenuError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewMenuError creates a menu error for the given window
func NewMenuError(op, windowID string, err error, code ErrorCode) *MenuError {
	return &MenuError{
		Op:        op,
		WindowID:  windowID,
		Code:      code,
		Err:       err,
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewMenuErrorWithContext creates a menu error carrying extra context
func NewMenuErrorWithContext(op, windowID string, err error, code ErrorCode, context map[string]string) *MenuError {
	menuErr := NewMenuError(op, windowID, err, code)
	menuErr.Context = cloneContext(context)
	return menuErr
}

// MenuNotPrepared reports a lookup of a window that has no registered menu
func MenuNotPrepared(op, windowID string) *MenuError {
	return NewMenuError(op, windowID, ErrMenuNotPrepared, ErrCodeMenuNotPrepared)
}

// HandleUnavailable reports a window whose native handle cannot be resolved yet
func HandleUnavailable(op, windowID string, cause error) *MenuError {
	if cause == nil {
		cause = ErrHandleUnavailable
	}
	return NewMenuError(op, windowID, cause, ErrCodeHandleUnavailable)
}

// BuildFailure reports a menu description rejected during construction
func BuildFailure(op, windowID string, cause error) *MenuError {
	return NewMenuError(op, windowID, cause, ErrCodeBuildFailure)
}

// PopupActive reports a popup request for a window whose menu is already showing
func PopupActive(op, windowID string) *MenuError {
	return NewMenuError(op, windowID, ErrPopupActive, ErrCodePopupActive)
}

// IsMenuNotPrepared checks if the error is a missing registry entry
func IsMenuNotPrepared(err error) bool { return HasCode(err, ErrCodeMenuNotPrepared) }

// IsHandleUnavailable checks if the error is an unresolved window handle
func IsHandleUnavailable(err error) bool { return HasCode(err, ErrCodeHandleUnavailable) }

// IsBuildFailure checks if the error is a rejected menu description
func IsBuildFailure(err error) bool { return HasCode(err, ErrCodeBuildFailure) }

// IsPopupActive checks if the error is a rejected concurrent popup
func IsPopupActive(err error) bool { return HasCode(err, ErrCodePopupActive) }
