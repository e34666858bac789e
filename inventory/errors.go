/*
errors.go - Centralized error types for the inventory engine

PURPOSE:
  All domain errors in one place. Callers match with errors.Is/errors.As;
  the API layer maps the classification helpers to HTTP statuses.

ERROR CATEGORIES:
  1. Lookup errors      - assignment/line/catalog reference missing
  2. Lifecycle errors   - status edge not in the transition table, or a
                          ledger mutation against a closed day
  3. Ledger errors      - a decrement would drive a balance negative
  4. Uniqueness errors  - duplicate assignment for (pairing, date)
  5. Storage errors     - a write unexpectedly returned no result

Nothing here is retried by the engine. Every error raised inside a unit of
work aborts and rolls back that unit of work; retry policy belongs to the
caller.
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when an assignment, line, pointer, or catalog
	// reference does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a requested status edge is not
	// in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateAssignment is returned when an assignment already exists
	// for the target (pairing, date).
	ErrDuplicateAssignment = errors.New("assignment already exists for pairing and date")

	// ErrInsufficientQuantity is returned when applying a delta would drive
	// a tracked quantity negative.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrAssignmentClosed is returned when a ledger mutation addresses a
	// line of a consolidated assignment directly, bypassing the router.
	ErrAssignmentClosed = errors.New("assignment is consolidated")

	// ErrInternal is returned when a storage write unexpectedly returned no
	// result.
	ErrInternal = errors.New("internal storage error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string // "assignment", "line", "current pointer", "catalog ref"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError carries the rejected edge.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// DuplicateAssignmentError carries the conflicting (pairing, date) key.
type DuplicateAssignmentError struct {
	PairingID PairingID
	Date      Date
	Existing  AssignmentID
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("assignment already exists for pairing %s on %s (id: %s)",
		e.PairingID, e.Date, e.Existing)
}

func (e *DuplicateAssignmentError) Unwrap() error { return ErrDuplicateAssignment }

// InsufficientQuantityError reports which line and which count would go
// negative, with the available balance and the requested delta.
type InsufficientQuantityError struct {
	LineID    LineID
	Ref       CatalogRef
	Available Quantity
	Delta     Quantity
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity on line %s (%s): available full=%d empty=%d, delta full=%d empty=%d",
		e.LineID, e.Ref, e.Available.Full, e.Available.Empty, e.Delta.Full, e.Delta.Empty)
}

func (e *InsufficientQuantityError) Unwrap() error { return ErrInsufficientQuantity }

// ClosedAssignmentError reports a by-line mutation against a consolidated
// assignment, whose balances are frozen.
type ClosedAssignmentError struct {
	AssignmentID AssignmentID
	LineID       LineID
}

func (e *ClosedAssignmentError) Error() string {
	return fmt.Sprintf("assignment %s is consolidated; line %s balances are frozen",
		e.AssignmentID, e.LineID)
}

func (e *ClosedAssignmentError) Unwrap() error { return ErrAssignmentClosed }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsClientError reports whether the error is a local validation failure the
// caller can act on, as opposed to a storage fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateAssignment) ||
		errors.Is(err, ErrInsufficientQuantity) ||
		errors.Is(err, ErrAssignmentClosed)
}

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error should surface as a conflict
// (duplicate key or frozen state) rather than a plain validation failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAssignment) ||
		errors.Is(err, ErrAssignmentClosed)
}
