/*
Package inventory is the core engine for daily stock assignments.

PURPOSE:
  Each store/operator pairing receives one assignment per business day: a
  dated snapshot of the gas tanks and auxiliary items handed over that
  morning. This package tracks the live balance of every assignment line
  against deliveries and returns, and rolls unconsumed balances forward
  into the next day's assignment.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: a pair of non-negative unit counts (full/empty tanks)
  - Assignment: the dated header, one per (pairing, date)
  - Line: one catalog entry's assigned/current quantity within an assignment
  - TransactionRecord: an immutable ledger entry recording a signed delta
  - StatusHistoryEntry: audit trail of lifecycle transitions
  - CurrentPointer: which assignment is presently active for a pairing

DESIGN PRINCIPLES:
  1. Append-only ledger: current quantities change only via records
  2. Frozen prices: purchase/sell prices snapshot at line creation
  3. Type safety: strong ID types prevent mixing assignment/line/pairing IDs
  4. Precision: decimal.Decimal for money, integers for unit counts

SEE ALSO:
  - status.go: Lifecycle state machine
  - ledger.go: Balance mutation through transaction records
  - consolidation.go: Day rollover with carried balances
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AssignmentID string
type LineID string
type PairingID string
type TransactionID string
type HistoryEntryID string

// =============================================================================
// CATALOG REFERENCE - What a line tracks (tank type or inventory item)
// =============================================================================

// RefKind distinguishes the two catalog families a line can reference.
type RefKind string

const (
	RefTank RefKind = "tank"
	RefItem RefKind = "item"
)

// CatalogRef identifies the catalog entry behind a line. Tank lines and item
// lines share the same shape; only the referenced catalog family differs.
type CatalogRef struct {
	Kind RefKind
	ID   string
}

func TankRef(id string) CatalogRef { return CatalogRef{Kind: RefTank, ID: id} }
func ItemRef(id string) CatalogRef { return CatalogRef{Kind: RefItem, ID: id} }

func (r CatalogRef) String() string { return string(r.Kind) + ":" + r.ID }

// =============================================================================
// QUANTITY - Non-negative unit counts
// =============================================================================

// Quantity holds the tracked unit counts for a line. Tank lines track full
// and empty cylinders independently. Item lines track a single count carried
// in the Full slot; Empty stays zero for items.
//
// A Quantity used as a delta may carry negative components; a Quantity used
// as a balance never may.
type Quantity struct {
	Full  int64 `json:"full"`
	Empty int64 `json:"empty"`
}

func Tanks(full, empty int64) Quantity { return Quantity{Full: full, Empty: empty} }
func Items(count int64) Quantity       { return Quantity{Full: count} }

func (q Quantity) Add(d Quantity) Quantity { return Quantity{Full: q.Full + d.Full, Empty: q.Empty + d.Empty} }
func (q Quantity) Sub(d Quantity) Quantity { return Quantity{Full: q.Full - d.Full, Empty: q.Empty - d.Empty} }
func (q Quantity) Neg() Quantity           { return Quantity{Full: -q.Full, Empty: -q.Empty} }
func (q Quantity) IsZero() bool            { return q.Full == 0 && q.Empty == 0 }

// HasNegative reports whether any tracked count is below zero. Balances must
// never satisfy this; deltas routinely do.
func (q Quantity) HasNegative() bool { return q.Full < 0 || q.Empty < 0 }

// Abs normalizes a delta to positive magnitudes. Used by the decrement
// wrappers, which accept positive magnitudes and negate internally.
func (q Quantity) Abs() Quantity {
	abs := func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return Quantity{Full: abs(q.Full), Empty: abs(q.Empty)}
}

// =============================================================================
// ASSIGNMENT - Dated stock handover header
// =============================================================================

// Assignment is the dated header of a stock handover to one store/operator
// pairing. At most one assignment exists per (PairingID, Date).
type Assignment struct {
	ID        AssignmentID
	PairingID PairingID
	Date      Date
	Status    Status

	// AssignedBy is the actor who created the assignment. For successors
	// spawned by consolidation this is the actor who triggered the rollover.
	AssignedBy string

	// AutoAssignment marks system-generated assignments (consolidation
	// successors), as opposed to ones an operator opened by hand.
	AutoAssignment bool

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// LINE - One catalog entry's balance within an assignment
// =============================================================================

// Line tracks one catalog entry inside an assignment.
//
// INVARIANTS:
//   - Assigned is the baseline set at creation and never changes afterwards.
//   - Current changes only through ledger transaction records.
//   - Current never holds a negative count.
//   - Prices are frozen at line creation; the catalog is never re-consulted.
type Line struct {
	ID           LineID
	AssignmentID AssignmentID
	Ref          CatalogRef

	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal

	Assigned Quantity
	Current  Quantity

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// TRANSACTION RECORD - Append-only ledger entry
// =============================================================================

// TransactionKind classifies why a balance moved.
type TransactionKind string

const (
	TxPurchase   TransactionKind = "purchase"   // Stock correction / restock
	TxSale       TransactionKind = "sale"       // Delivery out to a customer
	TxReturn     TransactionKind = "return"     // Customer or route return
	TxTransfer   TransactionKind = "transfer"   // Movement between assignments
	TxAssignment TransactionKind = "assignment" // Baseline seeding at creation
)

// TransactionRecord is an immutable ledger entry. Records are never updated
// or deleted; corrections are new records with the opposite sign.
type TransactionRecord struct {
	ID           TransactionID
	LineID       LineID
	AssignmentID AssignmentID
	Ref          CatalogRef

	// Delta is the signed quantity change as requested by the caller.
	// Tank lines carry independent full/empty components.
	Delta Quantity

	Kind    TransactionKind
	ActorID string

	// ReferenceID ties the record back to an external document, typically
	// an order id from the fulfillment caller. Optional.
	ReferenceID string

	Notes     string
	CreatedAt time.Time
}

// =============================================================================
// STATUS HISTORY - Append-only lifecycle audit
// =============================================================================

// StatusHistoryEntry records one lifecycle transition. From is nil only for
// the implicit creation event.
type StatusHistoryEntry struct {
	ID           HistoryEntryID
	AssignmentID AssignmentID
	From         *Status
	To           Status
	ActorID      string
	Reason       string
	Notes        string
	CreatedAt    time.Time
}

// =============================================================================
// CURRENT POINTER - The active assignment per pairing
// =============================================================================

// CurrentPointer records which assignment is presently active (non-closed)
// for a pairing. Updated whenever a new assignment becomes current.
type CurrentPointer struct {
	PairingID    PairingID
	AssignmentID AssignmentID
	UpdatedAt    time.Time
}

// =============================================================================
// BALANCE VIEW - Read-only projection for callers
// =============================================================================

// LineBalance is the read-only projection returned by balance queries.
type LineBalance struct {
	LineID   LineID
	Ref      CatalogRef
	Assigned Quantity
	Current  Quantity
}
