// Package checkpoint provides standardized error types for checkpoint
// storage operations.
package checkpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound indicates no checkpoint exists for the given
	// session identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionID indicates a session identifier that a store
	// refuses to use as a storage key.
	ErrInvalidSessionID = errors.New("invalid session id")
)

// SessionError wraps checkpoint errors with operation context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "Load", "Save", "Delete")
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for session errors.
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{
		Op:        op,
		SessionID: sessionID,
		Err:       err,
	}
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
