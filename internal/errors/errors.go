package errors

import "fmt"

// ErrorCode classifies a failure for logging and user display.
type ErrorCode string

const (
	ErrConfiguration     ErrorCode = "CONFIGURATION"       // missing/invalid remote credentials or ids
	ErrStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"   // network/API failure on a store tier
	ErrCorruptLocalStore ErrorCode = "CORRUPT_LOCAL_STORE" // malformed local feedback file
	ErrArtifactLoad      ErrorCode = "ARTIFACT_LOAD"       // classifier/vectorizer failed to load
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrInternal          ErrorCode = "INTERNAL"
)

// AppError is a structured error carrying a code and a message safe to
// show to the user. The wrapped cause is for logs only.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewConfiguration marks a store tier as unusable due to missing or
// invalid configuration. Non-fatal: the recorder falls through to the
// next tier.
func NewConfiguration(msg string) *AppError {
	return &AppError{Code: ErrConfiguration, Message: msg}
}

// NewStoreUnavailable wraps a network or API failure on a store tier.
func NewStoreUnavailable(tier string, err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: fmt.Sprintf("feedback store %q is unreachable", tier),
		Err:     err,
	}
}

// NewCorruptLocalStore wraps a malformed local feedback file. Readers
// recover by treating the file as empty.
func NewCorruptLocalStore(path string, err error) *AppError {
	return &AppError{
		Code:    ErrCorruptLocalStore,
		Message: fmt.Sprintf("local feedback file %q is malformed", path),
		Err:     err,
	}
}

// NewArtifactLoad marks the analyze path as unusable: the model or
// vectorizer artifact could not be loaded.
func NewArtifactLoad(path string, err error) *AppError {
	return &AppError{
		Code:    ErrArtifactLoad,
		Message: fmt.Sprintf("model artifact %q could not be loaded", path),
		Err:     err,
	}
}

// NewInvalidRequest reports a bad user request (empty text, unknown label).
func NewInvalidRequest(msg string) *AppError {
	return &AppError{Code: ErrInvalidRequest, Message: msg}
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *AppError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{Code: ErrInternal, Message: msg, Err: err}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AppError); ok {
		return aErr.Code == code
	}
	return false
}
