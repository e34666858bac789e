/*
consolidation.go - Day rollover: close one assignment, open its successor

PURPOSE:
  Consolidation freezes an assignment's balances and spawns the next
  business day's assignment seeded with the carried quantities. The whole
  workflow runs in one unit of work: either the day is fully closed and the
  successor fully created with the current pointer moved, or nothing
  happened.

STEPS (all inside one WithTx):
  1. Load assignment and lines, check the closable precondition
  2. Compute target date (staleness-aware base selection, see dates.go)
  3. Guard against an existing assignment on (pairing, target date)
  4. Transition the assignment to CONSOLIDATED, with audit entry
  5. Carry lines that had nonzero assigned OR nonzero current quantity;
     successor Assigned = predecessor Current (sub-quantities independent)
  6. Create the successor (CREATED, auto-assignment) with its initial entry
  7. Move the current pointer to the successor

CARRY FILTER:
  A line with both assigned and current at zero is dead weight from a
  catalog entry the store stopped carrying; it is dropped rather than
  resurrected day after day. A line with current zero but nonzero assigned
  saw real movement and IS carried, at quantity zero.

SEE ALSO:
  - status.go: ConsolidationPrecondition
  - dates.go: NextDateFrom
*/
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONSOLIDATOR
// =============================================================================

// Consolidator orchestrates the day-rollover workflow.
type Consolidator struct {
	Store TxStore
	Clock Clock
}

func NewConsolidator(store TxStore, clock Clock) *Consolidator {
	return &Consolidator{Store: store, Clock: clock}
}

// ConsolidationResult returns both sides of a rollover.
type ConsolidationResult struct {
	Closed         Assignment
	Successor      Assignment
	SuccessorLines []Line

	// StaleRecovery reports that the successor date was computed from
	// today rather than the stale assignment date.
	StaleRecovery bool
}

// ConsolidateAndCreateNext closes the assignment and creates its dated
// successor with carried balances. Not retried automatically: a
// DuplicateAssignmentError means someone already opened the target day.
func (c *Consolidator) ConsolidateAndCreateNext(ctx context.Context, id AssignmentID, actorID string, skipWeekends bool) (*ConsolidationResult, error) {
	var result *ConsolidationResult

	err := c.Store.WithTx(ctx, func(s Store) error {
		a, err := s.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return &NotFoundError{Entity: "assignment", ID: string(id)}
		}
		if err := ConsolidationPrecondition(a.Status); err != nil {
			return err
		}

		lines, err := s.Lines(ctx, a.ID)
		if err != nil {
			return err
		}

		today := c.Clock.Today()
		targetDate, stale := NextDateFrom(a.Date, today, skipWeekends)

		existing, err := s.GetByPairingAndDate(ctx, a.PairingID, targetDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateAssignmentError{PairingID: a.PairingID, Date: targetDate, Existing: existing.ID}
		}

		now := time.Now().UTC()

		// Close the current day.
		notes := fmt.Sprintf("consolidated %s into %s", a.Date, targetDate)
		if stale {
			notes += fmt.Sprintf(" (stale recovery: %d days behind %s)", DaysBetween(a.Date, today), today)
		}
		if err := s.SetStatus(ctx, a.ID, StatusConsolidated, now); err != nil {
			return err
		}
		from := a.Status
		if err := s.AppendHistory(ctx, StatusHistoryEntry{
			ID:           HistoryEntryID(uuid.NewString()),
			AssignmentID: a.ID,
			From:         &from,
			To:           StatusConsolidated,
			ActorID:      actorID,
			Reason:       "automatic consolidation",
			Notes:        notes,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		// Open the successor with carried balances.
		successor := Assignment{
			ID:             AssignmentID(uuid.NewString()),
			PairingID:      a.PairingID,
			Date:           targetDate,
			Status:         StatusCreated,
			AssignedBy:     actorID,
			AutoAssignment: true,
			Notes:          fmt.Sprintf("carried over from %s", a.Date),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		carried := carryLines(lines, successor.ID, now)

		if err := s.CreateAssignment(ctx, successor, carried); err != nil {
			return err
		}
		if err := s.AppendHistory(ctx, StatusHistoryEntry{
			ID:           HistoryEntryID(uuid.NewString()),
			AssignmentID: successor.ID,
			From:         nil,
			To:           StatusCreated,
			ActorID:      actorID,
			Reason:       "automatic consolidation",
			Notes:        fmt.Sprintf("opened from consolidation of %s", a.ID),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		if err := s.SetPointer(ctx, CurrentPointer{
			PairingID:    a.PairingID,
			AssignmentID: successor.ID,
			UpdatedAt:    now,
		}); err != nil {
			return err
		}

		closed := *a
		closed.Status = StatusConsolidated
		closed.UpdatedAt = now
		result = &ConsolidationResult{
			Closed:         closed,
			Successor:      successor,
			SuccessorLines: carried,
			StaleRecovery:  stale,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// carryLines builds the successor's line set. Prices stay frozen from the
// predecessor line, never re-read from the catalog.
func carryLines(lines []Line, successor AssignmentID, now time.Time) []Line {
	var carried []Line
	for _, line := range lines {
		if line.Assigned.IsZero() && line.Current.IsZero() {
			continue
		}
		carried = append(carried, Line{
			ID:            LineID(uuid.NewString()),
			AssignmentID:  successor,
			Ref:           line.Ref,
			PurchasePrice: line.PurchasePrice,
			SellPrice:     line.SellPrice,
			Assigned:      line.Current,
			Current:       line.Current,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return carried
}
