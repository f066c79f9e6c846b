// Package services provides the session facade the HTTP layer talks to, plus
// the background reaper that expires stale checkpoints.
package services

import (
	"errors"
	"fmt"
)

// Validation errors (400 Bad Request).
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyRawInput      = errors.New("raw input cannot be empty")
	ErrInvalidThreshold   = errors.New("confidence threshold must be between 0 and 1")
	ErrMissingResumeInput = errors.New("resume input must carry answers or a decision")
)

// ServiceError wraps service-level errors with the failing operation.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyRawInput) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrMissingResumeInput)
}
