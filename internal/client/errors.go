package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	KindConnectTimeout ErrorKind = "connect_timeout"
	KindReadTimeout    ErrorKind = "read_timeout"
	KindNoBody         ErrorKind = "no_body"
	KindTransport      ErrorKind = "transport"
)

// errConnectTimeout marks a dial that ran out of its connect budget.
var errConnectTimeout = errors.New("connect timeout")

// ErrNoBody is wrapped by NoBody failures.
var ErrNoBody = errors.New("response has no body")

// ErrResponseTooLarge is wrapped by Transport failures for bodies over the cap.
var ErrResponseTooLarge = errors.New("response too large")

// RequestError is the only error type Post returns.
type RequestError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message is the user-facing text for the failure.
func (e *RequestError) Message() string {
	switch e.Kind {
	case KindConnectTimeout:
		return "Could not connect to the server in time."
	case KindReadTimeout:
		return "The server did not respond in time."
	case KindNoBody:
		return "No response from server."
	default:
		if e.Err == nil {
			return "Error: request failed"
		}
		return "Error: " + e.Err.Error()
	}
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// AsRequestError returns err as a *RequestError, wrapping anything else as a
// transport failure under op.
func AsRequestError(op string, err error) *RequestError {
	var re *RequestError
	if errors.As(err, &re) {
		return re
	}
	return &RequestError{Op: op, Kind: KindTransport, Err: err}
}
