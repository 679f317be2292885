package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEntryFee     = errors.New("entry fee must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance for entry fee")
	ErrMatchInProgress     = errors.New("player already has an active match")
	ErrNoActiveMatch       = errors.New("no active match")
	ErrNotOnCard           = errors.New("number is not on the player card")
	ErrNotPlaying          = errors.New("match is not playing")
	ErrNotPaused           = errors.New("match is not paused")
	ErrInvalidOutcome      = errors.New("outcome must be player, opponent or timeout")
)

// InternalError wraps an unexpected collaborator failure. A start that
// fails with it has committed nothing.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: unexpected internal error: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
