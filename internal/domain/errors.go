package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the hubstore domain.
// These errors can be checked with errors.Is.
var (
	// ErrUnsupportedInput is returned when a batch is neither a payload nor a sequence.
	ErrUnsupportedInput = errors.New("hubstore: unsupported data type")

	// ErrSerialization is returned when a record cannot produce a valid JSON value.
	ErrSerialization = errors.New("hubstore: serialization failed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("hubstore: invalid configuration")
)

// StatusError reports a response whose status code signals a client or server error.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}
