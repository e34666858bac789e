/*
service.go - Client-facing operations facade

PURPOSE:
  The contract consumed by the API layer and the fulfillment caller. Each
  operation composes the lower components: assignment creation seeds lines
  from the catalog, status updates go through the state machine, delivery
  and return calls run the batch processor, and CONSOLIDATED status targets
  route into the consolidation workflow.

OPERATIONS:
  CreateAssignment        New dated assignment with catalog-seeded lines
  CreateOrGetForToday     Idempotent per calendar day
  UpdateStatus            State-machine transition (+ consolidation route)
  DeliveryOut             Atomic batch decrement, kind=sale
  DeliveryReturn          Atomic batch increment, kind=return
  StockAdjustment         Signed best-effort corrections, kind=purchase
  ConsolidateAndCreateNext Day rollover
  CurrentBalances         Read-only line balances

SEE ALSO:
  - ledger.go, consolidation.go, status.go
*/
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LazyCPU-org/lpg-backend-sub002/catalog"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service wires the engine's components behind the exposed contract.
type Service struct {
	Store        TxStore
	Catalog      catalog.Provider
	Clock        Clock
	Ledger       *Ledger
	Consolidator *Consolidator

	// SkipWeekends controls the default successor-date policy for
	// consolidations triggered through UpdateStatus.
	SkipWeekends bool
}

func NewService(store TxStore, cat catalog.Provider, clock Clock) *Service {
	return &Service{
		Store:        store,
		Catalog:      cat,
		Clock:        clock,
		Ledger:       NewLedger(store),
		Consolidator: NewConsolidator(store, clock),
	}
}

// AssignmentDetail bundles a header with its lines.
type AssignmentDetail struct {
	Assignment Assignment
	Lines      []Line
}

// =============================================================================
// ASSIGNMENT CREATION
// =============================================================================

// CreateAssignment opens a dated assignment for a pairing. Lines are seeded
// from the catalog with prices snapshotted now and zero quantities; the
// initial status history entry and the current pointer are written in the
// same unit of work. Fails with DuplicateAssignmentError if the day is
// already open.
func (svc *Service) CreateAssignment(ctx context.Context, pairing PairingID, date Date, actorID, notes string) (*AssignmentDetail, error) {
	tanks, err := svc.Catalog.TankTypes(ctx, string(pairing))
	if err != nil {
		return nil, err
	}
	items, err := svc.Catalog.Items(ctx, string(pairing))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := Assignment{
		ID:         AssignmentID(uuid.NewString()),
		PairingID:  pairing,
		Date:       date,
		Status:     StatusCreated,
		AssignedBy: actorID,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	lines := make([]Line, 0, len(tanks)+len(items))
	for _, t := range tanks {
		lines = append(lines, Line{
			ID:            LineID(uuid.NewString()),
			AssignmentID:  a.ID,
			Ref:           TankRef(t.ID),
			PurchasePrice: t.PurchasePrice,
			SellPrice:     t.SellPrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	for _, it := range items {
		lines = append(lines, Line{
			ID:            LineID(uuid.NewString()),
			AssignmentID:  a.ID,
			Ref:           ItemRef(it.ID),
			PurchasePrice: it.PurchasePrice,
			SellPrice:     it.SellPrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	err = svc.Store.WithTx(ctx, func(s Store) error {
		existing, err := s.GetByPairingAndDate(ctx, pairing, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateAssignmentError{PairingID: pairing, Date: date, Existing: existing.ID}
		}
		if err := s.CreateAssignment(ctx, a, lines); err != nil {
			return err
		}
		if err := s.AppendHistory(ctx, StatusHistoryEntry{
			ID:           HistoryEntryID(uuid.NewString()),
			AssignmentID: a.ID,
			From:         nil,
			To:           StatusCreated,
			ActorID:      actorID,
			Reason:       "assignment created",
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		// A backdated assignment must not steal the pointer from the
		// pairing's genuinely current day.
		ptr, err := s.GetPointer(ctx, pairing)
		if err != nil {
			return err
		}
		if ptr != nil {
			pointed, err := s.GetAssignment(ctx, ptr.AssignmentID)
			if err != nil {
				return err
			}
			if pointed != nil && date.Before(pointed.Date) {
				return nil
			}
		}
		return s.SetPointer(ctx, CurrentPointer{PairingID: pairing, AssignmentID: a.ID, UpdatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return &AssignmentDetail{Assignment: a, Lines: lines}, nil
}

// CreateOrGetForToday returns today's assignment for the pairing, creating
// it if absent. Calling it twice on the same calendar day returns the same
// assignment both times.
func (svc *Service) CreateOrGetForToday(ctx context.Context, pairing PairingID, actorID string) (*AssignmentDetail, error) {
	today := svc.Clock.Today()

	existing, err := svc.Store.GetByPairingAndDate(ctx, pairing, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		lines, err := svc.Store.Lines(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return &AssignmentDetail{Assignment: *existing, Lines: lines}, nil
	}

	detail, err := svc.CreateAssignment(ctx, pairing, today, actorID, "")
	if err == nil {
		return detail, nil
	}
	// Lost a race with a concurrent create for the same day: the winner's
	// assignment is the one we wanted.
	if IsConflict(err) {
		existing, getErr := svc.Store.GetByPairingAndDate(ctx, pairing, today)
		if getErr == nil && existing != nil {
			lines, linesErr := svc.Store.Lines(ctx, existing.ID)
			if linesErr != nil {
				return nil, linesErr
			}
			return &AssignmentDetail{Assignment: *existing, Lines: lines}, nil
		}
	}
	return nil, err
}

// GetAssignment returns a header with its lines.
func (svc *Service) GetAssignment(ctx context.Context, id AssignmentID) (*AssignmentDetail, error) {
	a, err := svc.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
	}
	lines, err := svc.Store.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AssignmentDetail{Assignment: *a, Lines: lines}, nil
}

// =============================================================================
// STATUS
// =============================================================================

// UpdateStatus transitions an assignment through the state machine. A
// CONSOLIDATED target on an open day (CREATED or ASSIGNED) routes into the
// consolidation workflow instead of a bare status write, and the returned
// assignment is the closed one. An OBSERVED assignment moving back to
// CONSOLIDATED is the rework loop: the successor from the original rollover
// already exists, so only the status is rewritten.
func (svc *Service) UpdateStatus(ctx context.Context, id AssignmentID, newStatus Status, actorID string) (*Assignment, error) {
	if newStatus == StatusConsolidated {
		a, err := svc.Store.GetAssignment(ctx, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
		}
		if ConsolidationPrecondition(a.Status) == nil {
			result, err := svc.ConsolidateAndCreateNext(ctx, id, actorID, svc.SkipWeekends)
			if err != nil {
				return nil, err
			}
			return &result.Closed, nil
		}
		// Not an open day: fall through to the bare recorded transition,
		// which admits the OBSERVED rework edge and rejects everything else.
	}

	var updated *Assignment
	err := svc.Store.WithTx(ctx, func(s Store) error {
		a, err := s.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return &NotFoundError{Entity: "assignment", ID: string(id)}
		}
		if err := ValidateTransition(a.Status, newStatus); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.SetStatus(ctx, a.ID, newStatus, now); err != nil {
			return err
		}
		from := a.Status
		if err := s.AppendHistory(ctx, StatusHistoryEntry{
			ID:           HistoryEntryID(uuid.NewString()),
			AssignmentID: a.ID,
			From:         &from,
			To:           newStatus,
			ActorID:      actorID,
			Reason:       "status update",
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		out := *a
		out.Status = newStatus
		out.UpdatedAt = now
		updated = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// StatusHistory returns the audit trail, oldest first.
func (svc *Service) StatusHistory(ctx context.Context, id AssignmentID) ([]StatusHistoryEntry, error) {
	a, err := svc.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
	}
	return svc.Store.History(ctx, id)
}

// =============================================================================
// LEDGER OPERATIONS (fulfillment caller contract)
// =============================================================================

// StockOp addresses one catalog ref within a delivery/return/adjustment.
// Quantity carries positive magnitudes for deliveries and returns, and a
// signed delta for adjustments.
type StockOp struct {
	Ref      CatalogRef
	Quantity Quantity
	Notes    string
}

// DeliveryOut records an order going out: an atomic batch decrement with
// kind=sale. Any insufficient line aborts the whole delivery.
func (svc *Service) DeliveryOut(ctx context.Context, id AssignmentID, actorID, referenceID string, ops []StockOp) (*BatchResult, error) {
	return svc.Ledger.ProcessBatch(ctx, id, batchOps(ops, TxSale, true), actorID, referenceID, true)
}

// DeliveryReturn records stock coming back: an atomic batch increment with
// kind=return.
func (svc *Service) DeliveryReturn(ctx context.Context, id AssignmentID, actorID, referenceID string, ops []StockOp) (*BatchResult, error) {
	return svc.Ledger.ProcessBatch(ctx, id, batchOps(ops, TxReturn, false), actorID, referenceID, true)
}

// StockAdjustment applies signed corrections with kind=purchase. Operations
// are best-effort: each runs in its own transaction and failures are
// isolated in the result.
func (svc *Service) StockAdjustment(ctx context.Context, id AssignmentID, actorID, referenceID string, ops []StockOp) (*BatchResult, error) {
	batch := make([]BatchOp, len(ops))
	for i, op := range ops {
		batch[i] = BatchOp{Ref: op.Ref, Delta: op.Quantity, Kind: TxPurchase, Notes: op.Notes}
	}
	return svc.Ledger.ProcessBatch(ctx, id, batch, actorID, referenceID, false)
}

func batchOps(ops []StockOp, kind TransactionKind, negate bool) []BatchOp {
	batch := make([]BatchOp, len(ops))
	for i, op := range ops {
		delta := op.Quantity.Abs()
		if negate {
			delta = delta.Neg()
		}
		batch[i] = BatchOp{Ref: op.Ref, Delta: delta, Kind: kind, Notes: op.Notes}
	}
	return batch
}

// =============================================================================
// CONSOLIDATION + BALANCES
// =============================================================================

// ConsolidateAndCreateNext closes the assignment and opens its successor.
func (svc *Service) ConsolidateAndCreateNext(ctx context.Context, id AssignmentID, actorID string, skipWeekends bool) (*ConsolidationResult, error) {
	return svc.Consolidator.ConsolidateAndCreateNext(ctx, id, actorID, skipWeekends)
}

// CurrentBalances is the read-only line balance projection.
func (svc *Service) CurrentBalances(ctx context.Context, id AssignmentID) ([]LineBalance, error) {
	return svc.Ledger.CurrentBalances(ctx, id)
}

// Transactions returns an assignment's ledger entries, oldest first.
func (svc *Service) Transactions(ctx context.Context, id AssignmentID) ([]TransactionRecord, error) {
	a, err := svc.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
	}
	return svc.Store.RecordsByAssignment(ctx, id)
}

// CurrentAssignment resolves the pairing's active assignment.
func (svc *Service) CurrentAssignment(ctx context.Context, pairing PairingID) (*AssignmentDetail, error) {
	ptr, err := svc.Store.GetPointer(ctx, pairing)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, &NotFoundError{Entity: "current assignment", ID: string(pairing)}
	}
	return svc.GetAssignment(ctx, ptr.AssignmentID)
}
