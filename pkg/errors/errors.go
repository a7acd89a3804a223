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
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Transport errors
	ErrConnectivity    ErrorCode = "CONNECTIVITY"
	ErrRemoteOperation ErrorCode = "REMOTE_OPERATION_FAILED"

	// Release errors
	ErrNotFound                ErrorCode = "NOT_FOUND"
	ErrAlreadyExists           ErrorCode = "ALREADY_EXISTS"
	ErrCurrentReleaseProtected ErrorCode = "CURRENT_RELEASE_PROTECTED"
	ErrNameCollision           ErrorCode = "NAME_COLLISION"

	// Artifact errors
	ErrArtifactMissing        ErrorCode = "ARTIFACT_MISSING"
	ErrUnsupportedArchiveType ErrorCode = "UNSUPPORTED_ARCHIVE_TYPE"

	// Shared resource errors
	ErrSharedResourceMissing ErrorCode = "SHARED_RESOURCE_MISSING"
)

// DeliveryError represents a structured error with code and details
type DeliveryError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DeliveryError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DeliveryError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DeliveryError) Is(target error) bool {
	var targetErr *DeliveryError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DeliveryError with the given code and message
func New(code ErrorCode, message string) *DeliveryError {
	return &DeliveryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DeliveryError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DeliveryError {
	return &DeliveryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DeliveryError
func Wrap(err error, code ErrorCode, message string) *DeliveryError {
	if err == nil {
		return nil
	}
	return &DeliveryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DeliveryError {
	if err == nil {
		return nil
	}
	return &DeliveryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Remote wraps a failed remote primitive. Errors that already carry a code
// (connectivity failures from the transport, for one) are passed through
// untouched so the original kind survives.
func Remote(err error, operation, path string) error {
	if err == nil {
		return nil
	}
	var coded *DeliveryError
	if errors.As(err, &coded) {
		return err
	}
	return Wrapf(err, ErrRemoteOperation, "%s %q failed", operation, path).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// WithDetail adds a detail to the error
func (e *DeliveryError) WithDetail(key string, value interface{}) *DeliveryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DeliveryError) WithDetails(details map[string]interface{}) *DeliveryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var coded *DeliveryError
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DeliveryError
func GetErrorCode(err error) ErrorCode {
	var coded *DeliveryError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DeliveryError
func GetErrorDetails(err error) map[string]interface{} {
	var coded *DeliveryError
	if errors.As(err, &coded) {
		return coded.Details
	}
	return nil
}
