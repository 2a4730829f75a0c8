package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tails error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"       // 400
	ErrNotFound             ErrorCode = "NOT_FOUND"             // 404
	ErrNoClips              ErrorCode = "NO_CLIPS"              // 404
	ErrFileNotFound         ErrorCode = "FILE_NOT_FOUND"        // 404
	ErrNoEditor             ErrorCode = "NO_EDITOR"             // 409
	ErrCancelled            ErrorCode = "CANCELLED"             // 499
	ErrInternal             ErrorCode = "INTERNAL"              // 500
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE" // 502
	ErrCommandFailed        ErrorCode = "COMMAND_FAILED"        // 502
)

// TailsError represents a structured error with code, status, and details.
type TailsError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TailsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TailsError {
	return &TailsError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a clip cannot be found.
func NewNotFound(identifier string) *TailsError {
	return &TailsError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("clip not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNoClips creates a 404 error for operations that need a non-empty history.
func NewNoClips() *TailsError {
	return &TailsError{
		Code:    ErrNoClips,
		Status:  404,
		Message: "no clips to paste",
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *TailsError {
	return &TailsError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNoEditor creates a 409 error when no active document or selection is available.
func NewNoEditor(what string) *TailsError {
	return &TailsError{
		Code:    ErrNoEditor,
		Status:  409,
		Message: fmt.Sprintf("no active %s", what),
	}
}

// NewCancelled creates a 499 error when an operation is cancelled via its context.
func NewCancelled(op string) *TailsError {
	return &TailsError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewClipboardUnavailable creates a 502 error when the clipboard cannot be read or written.
func NewClipboardUnavailable(err error) *TailsError {
	msg := "clipboard unavailable"
	if err != nil {
		msg = fmt.Sprintf("clipboard unavailable: %v", err)
	}
	return &TailsError{
		Code:    ErrClipboardUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewCommandFailed creates a 502 error when a host command fails.
func NewCommandFailed(command string, err error) *TailsError {
	return &TailsError{
		Code:    ErrCommandFailed,
		Status:  502,
		Message: fmt.Sprintf("command %q failed: %v", command, err),
		Details: map[string]any{"command": command},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *TailsError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TailsError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or any error it wraps) is a TailsError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TailsError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}
