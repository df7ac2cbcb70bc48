package depgraph

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is returned when the dependency mapping contains a cycle.
var ErrCycleDetected = errors.New("cycle detected in dependency graph")

// CycleError provides details about a detected cycle.
type CycleError struct {
	Path []int64
}

// Error returns the cycle description.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCycleDetected, e.Path)
}

// Unwrap returns ErrCycleDetected so callers can match with errors.Is.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// NewCycleError creates a CycleError.
func NewCycleError(path []int64) *CycleError {
	return &CycleError{Path: path}
}
