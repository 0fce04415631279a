package service

import "errors"

var (
	ErrTrackingValidation   = errors.New("invalid tracking entry")
	ErrMedicationValidation = errors.New("invalid medication")
	ErrReportValidation     = errors.New("invalid report")
	ErrSchemeNotFound       = errors.New("scheme not found")
)

// ValidationError is a rejected input with a message safe to show the user.
// errors.Is matches it against the wrapped sentinel.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(sentinel error, message string) error {
	return &ValidationError{Err: sentinel, Message: message}
}
