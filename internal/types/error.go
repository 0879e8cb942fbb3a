package types

import "net/http"

// StatusError is an error that knows which HTTP status it maps to.
// Message, when set, is what the client sees instead of the cause.
type StatusError struct {
	Err     error
	Status  int
	Message string
}

func (e StatusError) Error() string {
	if e.Err == nil {
		return e.ClientMessage()
	}
	return e.Err.Error()
}

func (e StatusError) Unwrap() error {
	return e.Err
}

func (e StatusError) HTTPStatus() int {
	return e.Status
}

func (e StatusError) ClientMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

func (e StatusError) WithMessage(msg string) StatusError {
	e.Message = msg
	return e
}

func NewStatusError(err error, status int) StatusError {
	return StatusError{
		Err:    err,
		Status: status,
	}
}
