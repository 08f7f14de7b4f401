package realm

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers as failed operation results.
var (
	// ErrNotFound means a referenced kingdom, resource or event id is
	// unknown. Not retried.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientFunds rejects an upgrade the gold stock can't cover.
	ErrInsufficientFunds = errors.New("insufficient gold")

	// ErrMaxLevel rejects an upgrade past the top quality tier.
	ErrMaxLevel = errors.New("resource already at maximum quality level")
)

// ValidationError marks malformed event or choice data from a
// collaborator. Recovered locally by substituting fallback content;
// never surfaced to the player as a failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a transient store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InitializationError means resource bootstrap failed after retries.
// Fatal to game start; the game is not playable until retried.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("resource initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }
