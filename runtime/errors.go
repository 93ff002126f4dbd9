// Package runtime is the small ambient library generated code calls into
// (§6 "Runtime shim surface"): placeholder-expander helpers, parameter
// collection helpers, and Materialize* result-mapping helpers, plus the
// run-time error types of spec §7.
package runtime

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is comparisons, mirroring the teacher's
// errors.go convention of a package-level var plus a concrete *Error type
// whose Is method matches it.
var (
	ErrNullScalar  = errors.New("sqlgen: scalar column returned NULL")
	ErrNotSingular = errors.New("sqlgen: optional query returned more than one row")
	ErrCancelled   = errors.New("sqlgen: operation cancelled")
)

// NullScalarError is raised when a scalar-shaped query expects a non-null
// result but the driver returned NULL (§4.6, §7).
type NullScalarError struct {
	Column string
}

func (e *NullScalarError) Error() string {
	return fmt.Sprintf("sqlgen: column %q returned NULL for a non-nullable scalar", e.Column)
}

func (e *NullScalarError) Is(target error) bool { return target == ErrNullScalar }

// NotSingularError is raised when MaterializeOptional is called with
// strict set and an Optional(entity) query returns more than one row. The default (§4.6) instead takes the first row and logs a warning;
// see shim.go MaterializeOptional.
type NotSingularError struct {
	Count int
}

func (e *NotSingularError) Error() string {
	return fmt.Sprintf("sqlgen: expected at most one row, got %d", e.Count)
}

func (e *NotSingularError) Is(target error) bool { return target == ErrNotSingular }

// CancelledError wraps a context cancellation observed mid-execution
// (§5 "a cancellation token ... causes the in-flight database operation to
// abort; partial results are discarded").
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string  { return fmt.Sprintf("sqlgen: cancelled: %v", e.Err) }
func (e *CancelledError) Unwrap() error  { return e.Err }
func (e *CancelledError) Is(t error) bool { return t == ErrCancelled }

// TransientDatabaseError wraps a connection-closed/connection-broken
// failure from the underlying driver (§7), preserving the original error.
type TransientDatabaseError struct {
	Err error
}

func (e *TransientDatabaseError) Error() string {
	return fmt.Sprintf("sqlgen: transient database error: %v", e.Err)
}
func (e *TransientDatabaseError) Unwrap() error { return e.Err }

// IsNullScalar reports whether err is (or wraps) a NullScalarError.
func IsNullScalar(err error) bool {
	var e *NullScalarError
	return errors.As(err, &e) || errors.Is(err, ErrNullScalar)
}

// IsNotSingular reports whether err is (or wraps) a NotSingularError.
func IsNotSingular(err error) bool {
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// IsCancelled reports whether err is (or wraps) a CancelledError.
func IsCancelled(err error) bool {
	var e *CancelledError
	return errors.As(err, &e) || errors.Is(err, ErrCancelled)
}

// IsTransient reports whether err is (or wraps) a TransientDatabaseError.
func IsTransient(err error) bool {
	var e *TransientDatabaseError
	return errors.As(err, &e)
}
