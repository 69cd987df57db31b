package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigMissing ErrorCode = "CONFIG_MISSING"
	ErrInvalidPID    ErrorCode = "INVALID_PID"

	// Process errors
	ErrMigrationBlocked  ErrorCode = "MIGRATION_BLOCKED"
	ErrProcessSignal     ErrorCode = "PROCESS_SIGNAL"
	ErrProcessUnkillable ErrorCode = "PROCESS_UNKILLABLE"

	// Link errors
	ErrUnexpectedPathType ErrorCode = "UNEXPECTED_PATH_TYPE"
	ErrLinkCreate         ErrorCode = "LINK_CREATE"
	ErrLinkRemove         ErrorCode = "LINK_REMOVE"

	// Merge errors
	ErrMergeCancelled    ErrorCode = "MERGE_CANCELLED"
	ErrConflictDestIsDir ErrorCode = "CONFLICT_DEST_IS_DIR"
	ErrBackupWrite       ErrorCode = "BACKUP_WRITE"
	ErrFileMove          ErrorCode = "FILE_MOVE"

	// Dialog errors
	ErrChooserUnavailable ErrorCode = "CHOOSER_UNAVAILABLE"

	// Relaunch errors
	ErrRelaunchFailed ErrorCode = "RELAUNCH_FAILED"
)

// SavekeepError represents a structured error with code and details
type SavekeepError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SavekeepError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SavekeepError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SavekeepError) Is(target error) bool {
	var targetErr *SavekeepError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SavekeepError with the given code and message
func New(code ErrorCode, message string) *SavekeepError {
	return &SavekeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SavekeepError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SavekeepError {
	return &SavekeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SavekeepError
func Wrap(err error, code ErrorCode, message string) *SavekeepError {
	if err == nil {
		return nil
	}
	return &SavekeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SavekeepError {
	if err == nil {
		return nil
	}
	return &SavekeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SavekeepError) WithDetail(key string, value interface{}) *SavekeepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var skErr *SavekeepError
	if errors.As(err, &skErr) {
		return skErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SavekeepError
func GetErrorCode(err error) ErrorCode {
	var skErr *SavekeepError
	if errors.As(err, &skErr) {
		return skErr.Code
	}
	return ErrUnknown
}

// IsUserCancellation reports whether the error represents an explicit
// user abort rather than a failure. Cancelled migrations leave
// already-applied work in place and are not bugs.
func IsUserCancellation(err error) bool {
	return IsErrorCode(err, ErrMigrationBlocked) || IsErrorCode(err, ErrMergeCancelled)
}
