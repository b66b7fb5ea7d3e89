package backend

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced a usable HTTP response:
// connection refused, DNS failure, timeout, or an unreadable body.
type TransportError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError means the backend answered with a non-success status or an
// explicit error in the response envelope.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
}

// ShapeError means the backend answered 2xx but the payload is missing the
// field the caller needs. Distinct from APIError so the caller can surface
// "invalid response" instead of the backend's own message.
type ShapeError struct {
	Op    string
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("backend %s: response missing %s", e.Op, e.Field)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsTimeout reports whether err is a transport error caused by a timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout
}

// IsAPI reports whether err is (or wraps) an APIError.
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// IsShape reports whether err is (or wraps) a ShapeError.
func IsShape(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}
