package services

import (
	"errors"
	"fmt"

	"church-system/store"
)

// Reasons attached to ErrInvalidState.
const (
	ReasonNotRecurring = "event is not recurring"
	ReasonEndReached   = "recurrence end reached"
	ReasonMaxReached   = "max occurrences reached"
	ReasonNotScheduled = "event is not in scheduled status"
)

var (
	// ErrNotFound aliases the store sentinel so callers can check either.
	ErrNotFound = store.ErrNotFound

	// ErrInvalidState covers operations requested on a non-recurring event
	// or a series whose termination condition is already reached.
	ErrInvalidState = errors.New("invalid event state")

	// ErrNoNewOccurrences is returned by Generate when every candidate
	// date was either past a termination condition or already materialized.
	ErrNoNewOccurrences = errors.New("no new occurrences to create")
)

func invalidState(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, reason)
}

// PersistenceError wraps a failed store call with the operation that
// attempted it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
