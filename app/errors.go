package app

import "errors"

var (
	ErrMissingModel = errors.New("no model given")
	ErrUnknownModel = errors.New("model is not installed")
)

// ExitError is a custom error type that includes a specific exit code. Its
// message has already been shown to the user when it is returned.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
