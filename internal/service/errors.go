package service

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a referenced entry or group vanished, typically
// under concurrent mutation. Callers may treat it as already handled.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or scope-incompatible input. It is never
// worth retrying without changed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError wraps a failed or rolled-back store transaction. The
// enclosing operation left no partial state behind.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RecurrenceBoundsError reports a horizon or installment count beyond the
// configured maximum.
type RecurrenceBoundsError struct {
	What      string
	Requested int
	Max       int
}

func (e *RecurrenceBoundsError) Error() string {
	return fmt.Sprintf("%s %d exceeds maximum %d", e.What, e.Requested, e.Max)
}
