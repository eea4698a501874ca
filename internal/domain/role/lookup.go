package role

import "errors"

// LookupStatus tags the result of a single store read.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupFailed
)

// String returns the string representation.
func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Lookup is the outcome of a store read. A miss and a failure are both
// values, so callers branch on Status instead of unwinding errors.
type Lookup[T any] struct {
	Value  T
	Status LookupStatus
	Err    error
}

// Found reports whether the read produced a value.
func (l Lookup[T]) Found() bool {
	return l.Status == LookupFound
}

// classify turns a store call result into a Lookup. present tells whether
// the returned value is usable; notFound is the adapter's miss sentinel.
func classify[T any](v T, present bool, err, notFound error) Lookup[T] {
	switch {
	case err == nil && present:
		return Lookup[T]{Value: v, Status: LookupFound}
	case err == nil, errors.Is(err, notFound):
		return Lookup[T]{Status: LookupNotFound, Err: err}
	default:
		return Lookup[T]{Status: LookupFailed, Err: err}
	}
}
