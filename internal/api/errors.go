package api

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by backends that do not offer an operation.
var ErrUnsupported = errors.New("operation not supported by this backend")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error %d", e.Status)
}

// RequestError is a transport failure: the request never got a reply.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
