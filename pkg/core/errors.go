package core

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrUnknownService = errors.New("unknown service")
	ErrUnknownHandler = errors.New("unknown handler")
	ErrBadEnvelope    = errors.New("malformed request envelope")
	ErrBadRequest     = errors.New("malformed request payload")
	ErrMissingKey     = errors.New("keyed service called without key")
)

// TerminalError lets a handler choose the HTTP status of its failure.
type TerminalError struct {
	Status int
	Err    error
}

func (e *TerminalError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Status)
	}
	return e.Err.Error()
}
func (e *TerminalError) Unwrap() error { return e.Err }

func Terminal(status int, err error) error { return &TerminalError{Status: status, Err: err} }

func statusFor(err error) int {
	var te *TerminalError
	switch {
	case errors.As(err, &te) && te.Status > 0:
		return te.Status
	case errors.Is(err, ErrUnknownService), errors.Is(err, ErrUnknownHandler):
		return http.StatusNotFound
	case errors.Is(err, ErrBadEnvelope), errors.Is(err, ErrBadRequest), errors.Is(err, ErrMissingKey):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
