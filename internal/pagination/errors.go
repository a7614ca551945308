package pagination

import (
	"errors"
	"fmt"
)

// Sentinel errors. Both are client-input errors: they surface before any
// store query executes and must never be retried.
var (
	// ErrBadFilter indicates a malformed filter key (wrong segment
	// count), an unknown operator token, or a field outside the
	// entity's allowlist.
	ErrBadFilter = errors.New("bad filter syntax")

	// ErrBadArgument indicates a malformed pagination scalar: a
	// non-positive take, an unparsable numeric value, or mutually
	// exclusive cursor bounds supplied together.
	ErrBadArgument = errors.New("bad pagination argument")
)

// FilterError carries the offending key for diagnosability.
type FilterError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	return fmt.Sprintf("bad filter %q: %s", e.Key, e.Reason)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *FilterError) Unwrap() error {
	return ErrBadFilter
}

// ArgumentError carries the offending pagination parameter.
type ArgumentError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("bad pagination argument %q: %s", e.Param, e.Reason)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ArgumentError) Unwrap() error {
	return ErrBadArgument
}
