package engine

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is matched (via errors.Is) by every CapacityError.
var ErrCapacityExceeded = errors.New("sequence capacity exceeded")

// CapacityError is returned by Sequence.Set when the step list is longer
// than the sequence capacity. The sequence is left unchanged; steps are
// never silently truncated.
type CapacityError struct {
	// Capacity is the fixed capacity of the sequence.
	Capacity int

	// Requested is the length of the rejected step list.
	Requested int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %d steps requested, capacity is %d", ErrCapacityExceeded, e.Requested, e.Capacity)
}

// Is lets errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
