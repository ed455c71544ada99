package services

import "errors"

var (
	// ErrForbidden means the caller's role or ownership does not permit the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials means the email/password pair did not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrClosed means the job's application deadline has passed.
	ErrClosed = errors.New("applications closed")

	// ErrUnavailable means an optional subsystem (model, object storage) is not configured.
	ErrUnavailable = errors.New("unavailable")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
