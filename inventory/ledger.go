/*
ledger.go - Quantity ledger and batch transaction processor

PURPOSE:
  The single gate through which line balances change. Every mutation reads
  the line's current quantity, verifies no tracked count would go negative,
  appends an immutable TransactionRecord, and writes the new balance - all
  inside one unit of work.

CRITICAL INVARIANTS:
  1. Current == Assigned + sum of applied deltas, at all times
  2. No tracked count is ever negative (full and empty checked separately)
  3. Records are append-only; corrections are opposite-sign records
  4. A batch with atomic=true commits fully or not at all

BATCH SEMANTICS:
  Operations execute sequentially, never in parallel, so an early failure
  aborts later operations deterministically and record order is preserved.
  With atomic=false each operation gets its own transaction and failures
  are isolated (used for best-effort stock corrections).

SEE ALSO:
  - routing.go: Assignment-scoped operations resolve through the router
  - store.go: AppendRecord / UpdateLineQuantity contract
*/
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger mutates line balances through append-only transaction records.
type Ledger struct {
	Store  TxStore
	Router *Router
}

func NewLedger(store TxStore) *Ledger {
	return &Ledger{Store: store, Router: &Router{}}
}

// =============================================================================
// SINGLE-LINE OPERATIONS
// =============================================================================

// ApplyDelta applies a signed quantity change to a line. Fails with
// InsufficientQuantityError if any post-delta count would be negative, and
// with ClosedAssignmentError if the line belongs to a consolidated
// assignment; in either case nothing is written. Callers holding only an
// assignment id should use the ByAssignmentAndRef variants, which redirect
// closed assignments to the pairing's current one instead of failing.
func (l *Ledger) ApplyDelta(ctx context.Context, lineID LineID, delta Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	var rec *TransactionRecord
	err := l.Store.WithTx(ctx, func(s Store) error {
		var err error
		rec, err = applyDelta(ctx, s, lineID, delta, kind, actorID, notes, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// IncrementByLine adds positive magnitudes to a line's balance.
func (l *Ledger) IncrementByLine(ctx context.Context, lineID LineID, magnitude Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	return l.ApplyDelta(ctx, lineID, magnitude.Abs(), kind, actorID, notes, referenceID)
}

// DecrementByLine subtracts positive magnitudes from a line's balance. The
// magnitude is normalized and negated before validation.
func (l *Ledger) DecrementByLine(ctx context.Context, lineID LineID, magnitude Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	return l.ApplyDelta(ctx, lineID, magnitude.Abs().Neg(), kind, actorID, notes, referenceID)
}

// IncrementByAssignmentAndRef resolves (assignment, catalog ref) to a line
// through the auto-router, then increments it.
func (l *Ledger) IncrementByAssignmentAndRef(ctx context.Context, id AssignmentID, ref CatalogRef, magnitude Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	return l.applyByRef(ctx, id, ref, magnitude.Abs(), kind, actorID, notes, referenceID)
}

// DecrementByAssignmentAndRef resolves (assignment, catalog ref) to a line
// through the auto-router, then decrements it.
func (l *Ledger) DecrementByAssignmentAndRef(ctx context.Context, id AssignmentID, ref CatalogRef, magnitude Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	return l.applyByRef(ctx, id, ref, magnitude.Abs().Neg(), kind, actorID, notes, referenceID)
}

func (l *Ledger) applyByRef(ctx context.Context, id AssignmentID, ref CatalogRef, delta Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	var rec *TransactionRecord
	err := l.Store.WithTx(ctx, func(s Store) error {
		target, err := l.Router.Resolve(ctx, s, id)
		if err != nil {
			return err
		}
		line, err := s.FindLine(ctx, target.ID, ref)
		if err != nil {
			return err
		}
		if line == nil {
			return &NotFoundError{Entity: "line", ID: string(target.ID) + "/" + ref.String()}
		}
		rec, err = applyDelta(ctx, s, line.ID, delta, kind, actorID, notes, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// applyDelta is the shared core: read balance, guard, append record, write
// balance. Runs against the caller's transactional view.
func applyDelta(ctx context.Context, s Store, lineID LineID, delta Quantity, kind TransactionKind, actorID, notes, referenceID string) (*TransactionRecord, error) {
	line, err := s.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, &NotFoundError{Entity: "line", ID: string(lineID)}
	}

	// Consolidated balances are frozen; only lines of the active
	// assignment may move.
	owner, err := s.GetAssignment(ctx, line.AssignmentID)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.Status == StatusConsolidated {
		return nil, &ClosedAssignmentError{AssignmentID: line.AssignmentID, LineID: line.ID}
	}

	next := line.Current.Add(delta)
	if next.HasNegative() {
		return nil, &InsufficientQuantityError{
			LineID:    line.ID,
			Ref:       line.Ref,
			Available: line.Current,
			Delta:     delta,
		}
	}

	now := time.Now().UTC()
	rec := TransactionRecord{
		ID:           TransactionID(uuid.NewString()),
		LineID:       line.ID,
		AssignmentID: line.AssignmentID,
		Ref:          line.Ref,
		Delta:        delta,
		Kind:         kind,
		ActorID:      actorID,
		ReferenceID:  referenceID,
		Notes:        notes,
		CreatedAt:    now,
	}
	if err := s.AppendRecord(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.UpdateLineQuantity(ctx, line.ID, next, now); err != nil {
		return nil, err
	}
	return &rec, nil
}

// =============================================================================
// BATCH PROCESSOR
// =============================================================================

// BatchOp is one signed operation within a batch, addressed by catalog ref
// within the batch's assignment.
type BatchOp struct {
	Ref   CatalogRef
	Delta Quantity
	Kind  TransactionKind
	Notes string
}

// BatchFailure records one isolated failure from a non-atomic batch.
type BatchFailure struct {
	Index int
	Ref   CatalogRef
	Err   error
}

// BatchResult reports what a batch did. Atomic batches either apply
// everything or return an error; Failures is only populated for
// atomic=false.
type BatchResult struct {
	Applied  []TransactionRecord
	Failures []BatchFailure
}

// ProcessBatch applies a list of signed operations against an assignment,
// resolving it through the auto-router first.
//
// atomic=true: one unit of work; any single failure rolls back the whole
// batch and is returned as the error.
//
// atomic=false: operations run in independent transactions, sequentially;
// failures are collected in the result and do not abort later operations.
func (l *Ledger) ProcessBatch(ctx context.Context, id AssignmentID, ops []BatchOp, actorID, referenceID string, atomic bool) (*BatchResult, error) {
	result := &BatchResult{}

	if atomic {
		err := l.Store.WithTx(ctx, func(s Store) error {
			target, err := l.Router.Resolve(ctx, s, id)
			if err != nil {
				return err
			}
			for _, op := range ops {
				rec, err := applyBatchOp(ctx, s, target.ID, op, actorID, referenceID)
				if err != nil {
					return err
				}
				result.Applied = append(result.Applied, *rec)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	for i, op := range ops {
		op := op
		err := l.Store.WithTx(ctx, func(s Store) error {
			target, err := l.Router.Resolve(ctx, s, id)
			if err != nil {
				return err
			}
			rec, err := applyBatchOp(ctx, s, target.ID, op, actorID, referenceID)
			if err != nil {
				return err
			}
			result.Applied = append(result.Applied, *rec)
			return nil
		})
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{Index: i, Ref: op.Ref, Err: err})
		}
	}
	return result, nil
}

func applyBatchOp(ctx context.Context, s Store, target AssignmentID, op BatchOp, actorID, referenceID string) (*TransactionRecord, error) {
	line, err := s.FindLine(ctx, target, op.Ref)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, &NotFoundError{Entity: "line", ID: string(target) + "/" + op.Ref.String()}
	}
	return applyDelta(ctx, s, line.ID, op.Delta, op.Kind, actorID, op.Notes, referenceID)
}

// =============================================================================
// READ-ONLY PROJECTIONS
// =============================================================================

// CurrentBalances returns the assignment's line balances. Reads are not
// routed; callers asking about a closed assignment see its frozen state.
func (l *Ledger) CurrentBalances(ctx context.Context, id AssignmentID) ([]LineBalance, error) {
	a, err := l.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
	}

	lines, err := l.Store.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	balances := make([]LineBalance, len(lines))
	for i, line := range lines {
		balances[i] = LineBalance{
			LineID:   line.ID,
			Ref:      line.Ref,
			Assigned: line.Assigned,
			Current:  line.Current,
		}
	}
	return balances, nil
}

// CurrentBalance returns one catalog ref's balance within an assignment.
func (l *Ledger) CurrentBalance(ctx context.Context, id AssignmentID, ref CatalogRef) (*LineBalance, error) {
	line, err := l.Store.FindLine(ctx, id, ref)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, &NotFoundError{Entity: "line", ID: string(id) + "/" + ref.String()}
	}
	return &LineBalance{LineID: line.ID, Ref: line.Ref, Assigned: line.Assigned, Current: line.Current}, nil
}
