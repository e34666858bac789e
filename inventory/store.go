/*
store.go - Persistence interfaces for assignments, lines, and the ledger

PURPOSE:
  Defines the seam between the domain engine and the database. Every
  multi-step mutation in this package runs through TxStore.WithTx so that
  partial writes are never observable.

KEY INTERFACES:
  AssignmentStore: Assignment headers, lines, status history
  LedgerStore:     Append-only transaction records + current quantities
  PointerStore:    The active-assignment pointer per pairing
  Store:           Union of the three (what a unit of work sees)
  TxStore:         Store plus WithTx

LOOKUP CONVENTION:
  Get* methods return (nil, nil) when the row does not exist. The engine is
  responsible for wrapping misses into NotFoundError; the store stays silent
  about domain semantics.

APPEND-ONLY CONTRACT:
  AppendRecord and AppendHistory have no update or delete counterparts.
  UpdateLineQuantity is the single sanctioned mutation of a line, and only
  the ledger calls it, always in the same unit of work as the record that
  justifies the change.

IMPLEMENTATIONS:
  - store/sqlite:  Production SQLite store
  - inventory/store: In-memory store for tests
*/
package inventory

import (
	"context"
	"time"
)

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// AssignmentStore persists assignment headers, their lines, and the status
// audit trail.
type AssignmentStore interface {
	// CreateAssignment inserts the header and all of its lines.
	CreateAssignment(ctx context.Context, a Assignment, lines []Line) error

	// GetAssignment returns the header, or (nil, nil) if absent.
	GetAssignment(ctx context.Context, id AssignmentID) (*Assignment, error)

	// GetByPairingAndDate returns the assignment for (pairing, date), or
	// (nil, nil). At most one can exist.
	GetByPairingAndDate(ctx context.Context, pairing PairingID, date Date) (*Assignment, error)

	// SetStatus updates the header status and its updated-at stamp. The
	// caller has already validated the edge and appends the matching
	// history entry in the same unit of work.
	SetStatus(ctx context.Context, id AssignmentID, status Status, at time.Time) error

	// Lines returns all lines of an assignment, stable order.
	Lines(ctx context.Context, id AssignmentID) ([]Line, error)

	// GetLine returns one line, or (nil, nil).
	GetLine(ctx context.Context, id LineID) (*Line, error)

	// FindLine resolves (assignment, catalog ref) to a line, or (nil, nil).
	FindLine(ctx context.Context, id AssignmentID, ref CatalogRef) (*Line, error)

	// AppendHistory appends one status audit entry. Append-only.
	AppendHistory(ctx context.Context, entry StatusHistoryEntry) error

	// History returns the audit trail, oldest first.
	History(ctx context.Context, id AssignmentID) ([]StatusHistoryEntry, error)
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore persists transaction records and the derived current
// quantities they justify.
type LedgerStore interface {
	// AppendRecord appends one ledger entry. Append-only.
	AppendRecord(ctx context.Context, rec TransactionRecord) error

	// Records returns a line's ledger entries, oldest first.
	Records(ctx context.Context, line LineID) ([]TransactionRecord, error)

	// RecordsByAssignment returns every ledger entry of an assignment,
	// oldest first.
	RecordsByAssignment(ctx context.Context, id AssignmentID) ([]TransactionRecord, error)

	// UpdateLineQuantity overwrites a line's current quantity. Only the
	// ledger calls this, in the same unit of work as AppendRecord.
	UpdateLineQuantity(ctx context.Context, line LineID, current Quantity, at time.Time) error
}

// =============================================================================
// POINTER STORE
// =============================================================================

// PointerStore persists the active-assignment pointer per pairing.
type PointerStore interface {
	// GetPointer returns the pointer, or (nil, nil).
	GetPointer(ctx context.Context, pairing PairingID) (*CurrentPointer, error)

	// SetPointer upserts the pointer.
	SetPointer(ctx context.Context, p CurrentPointer) error
}

// =============================================================================
// UNION + TRANSACTIONAL STORE
// =============================================================================

// Store is everything a unit of work can touch.
type Store interface {
	AssignmentStore
	LedgerStore
	PointerStore
}

// TxStore adds atomic units of work. WithTx runs fn against a transactional
// view; an error from fn rolls back every write fn made, a nil return
// commits them. Implementations must prevent lost updates on concurrent
// read-modify-write of the same line (single-writer locking or serializable
// isolation).
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
