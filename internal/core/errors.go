package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the completion credential is missing.
	ErrNotConfigured = errors.New("GEMINI_API_KEY is not configured on the server")
	// ErrStorageUnavailable is returned by writes against a read-only deployment.
	ErrStorageUnavailable = errors.New("sermon storage is unavailable in this deployment")
	ErrSermonNotFound     = errors.New("sermon not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	// ErrCorruptStore means the backing data could not be parsed and will not be overwritten.
	ErrCorruptStore = errors.New("sermon store is corrupt")
	// ErrWriteConflict means a conditional write lost against a concurrent writer too many times.
	ErrWriteConflict = errors.New("sermon store write conflict")
)

// ValidationError is a client mistake in a request payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RemoteError wraps any failure returned by the completion provider.
type RemoteError struct {
	err error
}

func (e *RemoteError) Error() string { return e.err.Error() }

func (e *RemoteError) Unwrap() error { return e.err }

// NewRemoteError wraps err as a provider failure.
func NewRemoteError(err error) error {
	return &RemoteError{err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRemote reports whether err came from the completion provider.
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
