package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
	"github.com/LazyCPU-org/lpg-backend-sub002/inventory/store"
)

func newConsolidator(m *store.Memory, today inventory.Date) *inventory.Consolidator {
	return inventory.NewConsolidator(m, inventory.FixedClock{Date: today})
}

func TestConsolidation_CarriesBalancesIntoSuccessor(t *testing.T) {
	// GIVEN: An assigned day with three lines:
	//   tank-10kg  assigned 10, current 4   (movement happened)
	//   regulator  assigned 5,  current 0   (sold out)
	//   tank-45kg  assigned 0,  current 0   (dead catalog entry)
	// WHEN: Consolidating
	// THEN: The successor opens tomorrow with 4/4 and 0/0; the dead line is dropped

	m := store.NewMemory()
	ctx := context.Background()
	today := date(2025, time.March, 10)

	seedAssignment(t, m, "a-1", "pair-1", today, inventory.StatusAssigned,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(4, 6)),
		seedLine("l-2", itemReg, inventory.Items(5), inventory.Items(0)),
		seedLine("l-3", tank45, inventory.Quantity{}, inventory.Quantity{}))

	result, err := newConsolidator(m, today).ConsolidateAndCreateNext(ctx, "a-1", "supervisor", false)
	require.NoError(t, err)

	assert.Equal(t, inventory.StatusConsolidated, result.Closed.Status)
	assert.False(t, result.StaleRecovery)
	assert.Equal(t, date(2025, time.March, 11), result.Successor.Date)
	assert.Equal(t, inventory.StatusCreated, result.Successor.Status)
	assert.True(t, result.Successor.AutoAssignment)
	assert.Equal(t, inventory.PairingID("pair-1"), result.Successor.PairingID)

	require.Len(t, result.SuccessorLines, 2, "the zero/zero line must be dropped")
	byRef := map[inventory.CatalogRef]inventory.Line{}
	for _, line := range result.SuccessorLines {
		byRef[line.Ref] = line
	}

	// Successor assigned = predecessor current, for both counts.
	carried := byRef[tank10]
	assert.Equal(t, inventory.Tanks(4, 6), carried.Assigned)
	assert.Equal(t, inventory.Tanks(4, 6), carried.Current)

	// Sold-out line with movement carries at zero rather than disappearing.
	soldOut, ok := byRef[itemReg]
	require.True(t, ok)
	assert.True(t, soldOut.Assigned.IsZero())
	assert.True(t, soldOut.Current.IsZero())

	// Prices frozen from the predecessor line.
	pred, _ := m.GetLine(ctx, "l-1")
	assert.True(t, carried.PurchasePrice.Equal(pred.PurchasePrice))
	assert.True(t, carried.SellPrice.Equal(pred.SellPrice))
}

func TestConsolidation_MovesPointerAndWritesHistory(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	today := date(2025, time.March, 10)

	seedAssignment(t, m, "a-1", "pair-1", today, inventory.StatusAssigned,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(10, 0)))

	result, err := newConsolidator(m, today).ConsolidateAndCreateNext(ctx, "a-1", "supervisor", false)
	require.NoError(t, err)

	// Pointer names the successor.
	ptr, err := m.GetPointer(ctx, "pair-1")
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.Equal(t, result.Successor.ID, ptr.AssignmentID)

	// Closed side gets an assigned -> consolidated entry.
	closedHistory, err := m.History(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, closedHistory, 1)
	require.NotNil(t, closedHistory[0].From)
	assert.Equal(t, inventory.StatusAssigned, *closedHistory[0].From)
	assert.Equal(t, inventory.StatusConsolidated, closedHistory[0].To)

	// Successor gets its initial entry with no From.
	successorHistory, err := m.History(ctx, result.Successor.ID)
	require.NoError(t, err)
	require.Len(t, successorHistory, 1)
	assert.Nil(t, successorHistory[0].From)
	assert.Equal(t, inventory.StatusCreated, successorHistory[0].To)
}

func TestConsolidation_DuplicateTargetDateRollsBack(t *testing.T) {
	// GIVEN: Tomorrow's assignment already exists
	// WHEN: Consolidating today's
	// THEN: DuplicateAssignmentError and today's stays ASSIGNED

	m := store.NewMemory()
	ctx := context.Background()
	today := date(2025, time.March, 10)

	seedAssignment(t, m, "a-today", "pair-1", today, inventory.StatusAssigned,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(10, 0)))
	seedAssignment(t, m, "a-tomorrow", "pair-1", today.AddDays(1), inventory.StatusCreated)

	_, err := newConsolidator(m, today).ConsolidateAndCreateNext(ctx, "a-today", "supervisor", false)
	require.Error(t, err)
	assert.True(t, inventory.IsConflict(err))

	a, err := m.GetAssignment(ctx, "a-today")
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusAssigned, a.Status, "failed rollover must leave the day open")

	history, err := m.History(ctx, "a-today")
	require.NoError(t, err)
	assert.Empty(t, history, "rolled-back audit entries must not survive")
}

func TestConsolidation_StaleRecoveryResumesFromToday(t *testing.T) {
	// GIVEN: An assignment left open since five days ago
	// WHEN: Consolidating today
	// THEN: The successor is tomorrow, not the day after the stale date

	m := store.NewMemory()
	ctx := context.Background()
	staleDate := date(2025, time.March, 5)
	today := date(2025, time.March, 10)

	seedAssignment(t, m, "a-stale", "pair-1", staleDate, inventory.StatusAssigned,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(7, 3)))

	result, err := newConsolidator(m, today).ConsolidateAndCreateNext(ctx, "a-stale", "supervisor", false)
	require.NoError(t, err)

	assert.True(t, result.StaleRecovery)
	assert.Equal(t, date(2025, time.March, 11), result.Successor.Date)

	// The audit entry explains the gap.
	history, err := m.History(ctx, "a-stale")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Notes, "stale recovery")
}

func TestConsolidation_SkipWeekends(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	friday := date(2025, time.March, 7)

	seedAssignment(t, m, "a-fri", "pair-1", friday, inventory.StatusAssigned,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(10, 0)))

	result, err := newConsolidator(m, friday).ConsolidateAndCreateNext(ctx, "a-fri", "supervisor", true)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 10), result.Successor.Date, "Friday rolls to Monday")
}

func TestConsolidation_CreatedDayStillCloses(t *testing.T) {
	// An untouched day (never handed over) rolls its zero movement forward.
	m := store.NewMemory()
	ctx := context.Background()
	today := date(2025, time.March, 10)

	seedAssignment(t, m, "a-1", "pair-1", today, inventory.StatusCreated,
		seedLine("l-1", tank10, inventory.Tanks(10, 0), inventory.Tanks(10, 0)))

	result, err := newConsolidator(m, today).ConsolidateAndCreateNext(ctx, "a-1", "supervisor", false)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusConsolidated, result.Closed.Status)
	require.Len(t, result.SuccessorLines, 1)
	assert.Equal(t, inventory.Tanks(10, 0), result.SuccessorLines[0].Assigned)
}

func TestConsolidation_PreconditionRejectsClosedStates(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	today := date(2025, time.March, 10)
	c := newConsolidator(m, today)

	seedAssignment(t, m, "a-done", "pair-1", today, inventory.StatusConsolidated)
	seedAssignment(t, m, "a-valid", "pair-2", today, inventory.StatusValidated)

	_, err := c.ConsolidateAndCreateNext(ctx, "a-done", "supervisor", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)

	_, err = c.ConsolidateAndCreateNext(ctx, "a-valid", "supervisor", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)
}

func TestConsolidation_MissingAssignment(t *testing.T) {
	_, err := newConsolidator(store.NewMemory(), date(2025, time.March, 10)).
		ConsolidateAndCreateNext(context.Background(), "ghost", "supervisor", false)
	require.Error(t, err)
	assert.True(t, inventory.IsNotFound(err))
}
