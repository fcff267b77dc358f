package gateway

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when no bearer credential is supplied
var ErrMissingToken = errors.New("gateway: bearer token is required")

// Error represents a failed gateway call
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: gateway responded with %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
