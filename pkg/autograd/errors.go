package autograd

import (
	"errors"
	"fmt"
)

// Sentinel errors for the autograd package.
var (
	// ErrDomain is returned when an operation is undefined for its operands.
	ErrDomain = errors.New("numeric domain error")

	// ErrNotLeaf is returned when writing the data of a non-leaf node.
	ErrNotLeaf = errors.New("only leaf nodes may be mutated")

	// ErrForeignValue is panicked when values from different graphs are combined.
	ErrForeignValue = errors.New("values belong to different graphs")

	// ErrInvalidValue is panicked when a zero Value is used.
	ErrInvalidValue = errors.New("value is not attached to a graph")

	// ErrInconsistent is panicked when the graph violates its own invariants,
	// e.g. a cycle or an unknown node kind. It always indicates a bug.
	ErrInconsistent = errors.New("graph consistency violated")
)

// DomainError reports a power operation that is undefined at Base**Exponent.
type DomainError struct {
	Base     float64
	Exponent float64
}

// Error returns the error message.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: pow(%g, %g) is undefined", ErrDomain, e.Base, e.Exponent)
}

// Unwrap returns ErrDomain.
func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// inconsistent panics with an error wrapping ErrInconsistent.
func inconsistent(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...)))
}
