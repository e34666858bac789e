package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LazyCPU-org/lpg-backend-sub002/catalog"
	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
	"github.com/LazyCPU-org/lpg-backend-sub002/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testAssignment(id, pairing string, d inventory.Date, status inventory.Status) inventory.Assignment {
	now := time.Now().UTC()
	return inventory.Assignment{
		ID:         inventory.AssignmentID(id),
		PairingID:  inventory.PairingID(pairing),
		Date:       d,
		Status:     status,
		AssignedBy: "admin",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func testLine(id, assignment string, ref inventory.CatalogRef, q inventory.Quantity) inventory.Line {
	now := time.Now().UTC()
	return inventory.Line{
		ID:            inventory.LineID(id),
		AssignmentID:  inventory.AssignmentID(assignment),
		Ref:           ref,
		PurchasePrice: decimal.RequireFromString("25.50"),
		SellPrice:     decimal.RequireFromString("45.90"),
		Assigned:      q,
		Current:       q,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var tank10 = inventory.TankRef("tank-10kg")

// =============================================================================
// ASSIGNMENT ROUNDTRIPS
// =============================================================================

func TestStore_AssignmentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)

	a := testAssignment("a-1", "pair-1", d, inventory.StatusCreated)
	a.AutoAssignment = true
	a.Notes = "carried over from 2025-03-09"
	lines := []inventory.Line{testLine("l-1", "a-1", tank10, inventory.Tanks(10, 2))}

	require.NoError(t, store.CreateAssignment(ctx, a, lines))

	got, err := store.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.PairingID, got.PairingID)
	assert.Equal(t, d, got.Date)
	assert.Equal(t, inventory.StatusCreated, got.Status)
	assert.True(t, got.AutoAssignment)
	assert.Equal(t, a.Notes, got.Notes)

	byDay, err := store.GetByPairingAndDate(ctx, "pair-1", d)
	require.NoError(t, err)
	require.NotNil(t, byDay)
	assert.Equal(t, got.ID, byDay.ID)

	gotLines, err := store.Lines(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, gotLines, 1)
	assert.Equal(t, inventory.Tanks(10, 2), gotLines[0].Current)
	assert.True(t, gotLines[0].PurchasePrice.Equal(decimal.RequireFromString("25.50")),
		"prices must survive the decimal-string roundtrip")
}

func TestStore_MissingRowsReturnNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.GetAssignment(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, a)

	line, err := store.GetLine(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, line)

	ptr, err := store.GetPointer(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, ptr)
}

func TestStore_DuplicateDayRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)

	require.NoError(t, store.CreateAssignment(ctx, testAssignment("a-1", "pair-1", d, inventory.StatusCreated), nil))

	err := store.CreateAssignment(ctx, testAssignment("a-2", "pair-1", d, inventory.StatusCreated), nil)
	require.Error(t, err)
	assert.True(t, inventory.IsConflict(err))

	var dupErr *inventory.DuplicateAssignmentError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, inventory.AssignmentID("a-1"), dupErr.Existing)

	// Same day for a different pairing is fine.
	require.NoError(t, store.CreateAssignment(ctx, testAssignment("a-3", "pair-2", d, inventory.StatusCreated), nil))
}

func TestStore_FindLineByRef(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)

	a := testAssignment("a-1", "pair-1", d, inventory.StatusAssigned)
	require.NoError(t, store.CreateAssignment(ctx, a, []inventory.Line{
		testLine("l-1", "a-1", tank10, inventory.Tanks(10, 0)),
		testLine("l-2", "a-1", inventory.ItemRef("regulator"), inventory.Items(5)),
	}))

	line, err := store.FindLine(ctx, "a-1", inventory.ItemRef("regulator"))
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, inventory.LineID("l-2"), line.ID)

	missing, err := store.FindLine(ctx, "a-1", inventory.TankRef("tank-45kg"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// STATUS, HISTORY, LEDGER
// =============================================================================

func TestStore_StatusAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)
	now := time.Now().UTC()

	require.NoError(t, store.CreateAssignment(ctx, testAssignment("a-1", "pair-1", d, inventory.StatusCreated), nil))
	require.NoError(t, store.SetStatus(ctx, "a-1", inventory.StatusAssigned, now))

	got, err := store.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusAssigned, got.Status)

	from := inventory.StatusCreated
	require.NoError(t, store.AppendHistory(ctx, inventory.StatusHistoryEntry{
		ID: "h-1", AssignmentID: "a-1", From: &from, To: inventory.StatusAssigned,
		ActorID: "op-1", Reason: "status update", CreatedAt: now,
	}))
	require.NoError(t, store.AppendHistory(ctx, inventory.StatusHistoryEntry{
		ID: "h-0", AssignmentID: "a-1", From: nil, To: inventory.StatusCreated,
		Reason: "assignment created", CreatedAt: now.Add(-time.Minute),
	}))

	history, err := store.History(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Oldest first regardless of insertion order.
	assert.Nil(t, history[0].From)
	require.NotNil(t, history[1].From)
	assert.Equal(t, inventory.StatusCreated, *history[1].From)
}

func TestStore_SetStatusMissingAssignment(t *testing.T) {
	store := newTestStore(t)
	err := store.SetStatus(context.Background(), "ghost", inventory.StatusAssigned, time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestStore_LedgerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)
	now := time.Now().UTC()

	a := testAssignment("a-1", "pair-1", d, inventory.StatusAssigned)
	require.NoError(t, store.CreateAssignment(ctx, a, []inventory.Line{
		testLine("l-1", "a-1", tank10, inventory.Tanks(10, 0)),
	}))

	rec := inventory.TransactionRecord{
		ID: "tx-1", LineID: "l-1", AssignmentID: "a-1", Ref: tank10,
		Delta: inventory.Quantity{Full: -3, Empty: 3}, Kind: inventory.TxSale,
		ActorID: "op-1", ReferenceID: "order-1", Notes: "sold 3", CreatedAt: now,
	}
	require.NoError(t, store.AppendRecord(ctx, rec))
	require.NoError(t, store.UpdateLineQuantity(ctx, "l-1", inventory.Tanks(7, 3), now))

	line, err := store.GetLine(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, inventory.Tanks(7, 3), line.Current)

	records, err := store.Records(ctx, "l-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.Delta, records[0].Delta)
	assert.Equal(t, inventory.TxSale, records[0].Kind)
	assert.Equal(t, "order-1", records[0].ReferenceID)

	byAssignment, err := store.RecordsByAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Len(t, byAssignment, 1)
}

func TestStore_PointerUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)
	now := time.Now().UTC()

	require.NoError(t, store.CreateAssignment(ctx, testAssignment("a-1", "pair-1", d, inventory.StatusCreated), nil))
	require.NoError(t, store.CreateAssignment(ctx, testAssignment("a-2", "pair-1", d.AddDays(1), inventory.StatusCreated), nil))

	require.NoError(t, store.SetPointer(ctx, inventory.CurrentPointer{PairingID: "pair-1", AssignmentID: "a-1", UpdatedAt: now}))
	require.NoError(t, store.SetPointer(ctx, inventory.CurrentPointer{PairingID: "pair-1", AssignmentID: "a-2", UpdatedAt: now}))

	ptr, err := store.GetPointer(ctx, "pair-1")
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.Equal(t, inventory.AssignmentID("a-2"), ptr.AssignmentID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s inventory.Store) error {
		if err := s.CreateAssignment(ctx, testAssignment("a-1", "pair-1", d, inventory.StatusCreated), nil); err != nil {
			return err
		}
		if err := s.SetPointer(ctx, inventory.CurrentPointer{PairingID: "pair-1", AssignmentID: "a-1", UpdatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := store.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Nil(t, a, "rolled-back insert must not be visible")

	ptr, err := store.GetPointer(ctx, "pair-1")
	require.NoError(t, err)
	assert.Nil(t, ptr)
}

func TestStore_WithTxCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	d := inventory.NewDate(2025, time.March, 10)

	err := store.WithTx(ctx, func(s inventory.Store) error {
		return s.CreateAssignment(ctx, testAssignment("a-1", "pair-1", d, inventory.StatusCreated), nil)
	})
	require.NoError(t, err)

	a, err := store.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, a)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestStore_CatalogRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTankType(ctx, catalog.TankType{
		ID: "tank-10kg", Name: "10kg cylinder", Weight: "10kg",
		PurchasePrice: decimal.RequireFromString("25.50"),
		SellPrice:     decimal.RequireFromString("45.90"),
	}))
	require.NoError(t, store.SaveItem(ctx, catalog.Item{
		ID: "regulator", Name: "Regulator",
		PurchasePrice: decimal.NewFromInt(8),
		SellPrice:     decimal.NewFromInt(15),
	}))

	tanks, err := store.TankTypes(ctx, "pair-1")
	require.NoError(t, err)
	require.Len(t, tanks, 1)
	assert.True(t, tanks[0].SellPrice.Equal(decimal.RequireFromString("45.90")))

	items, err := store.Items(ctx, "pair-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Regulator", items[0].Name)

	// Upsert updates in place.
	require.NoError(t, store.SaveItem(ctx, catalog.Item{
		ID: "regulator", Name: "Regulator v2",
		PurchasePrice: decimal.NewFromInt(9),
		SellPrice:     decimal.NewFromInt(16),
	}))
	items, err = store.Items(ctx, "pair-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Regulator v2", items[0].Name)
}

// =============================================================================
// ENGINE INTEGRATION
// =============================================================================

func TestStore_FullDayLifecycle(t *testing.T) {
	// The whole flow against real SQL: open, stock, sell, consolidate, and
	// route a late sale to the successor.

	store := newTestStore(t)
	ctx := context.Background()
	today := inventory.NewDate(2025, time.March, 10)

	require.NoError(t, store.SaveTankType(ctx, catalog.TankType{
		ID: "tank-10kg", Name: "10kg cylinder", Weight: "10kg",
		PurchasePrice: decimal.NewFromInt(25), SellPrice: decimal.NewFromInt(45),
	}))

	svc := inventory.NewService(store, store, inventory.FixedClock{Date: today})
	svc.Ledger.Router.Logf = func(string, ...any) {}

	detail, err := svc.CreateOrGetForToday(ctx, "pair-1", "admin")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, detail.Assignment.ID, inventory.StatusAssigned, "admin")
	require.NoError(t, err)

	_, err = svc.StockAdjustment(ctx, detail.Assignment.ID, "admin", "handover", []inventory.StockOp{
		{Ref: tank10, Quantity: inventory.Tanks(10, 0)},
	})
	require.NoError(t, err)

	_, err = svc.DeliveryOut(ctx, detail.Assignment.ID, "op-1", "order-1", []inventory.StockOp{
		{Ref: tank10, Quantity: inventory.Tanks(4, 0)},
	})
	require.NoError(t, err)

	result, err := svc.ConsolidateAndCreateNext(ctx, detail.Assignment.ID, "supervisor", false)
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(1), result.Successor.Date)
	require.Len(t, result.SuccessorLines, 1)
	assert.Equal(t, inventory.Tanks(6, 0), result.SuccessorLines[0].Assigned)

	// Late sale against the closed id lands on the successor.
	out, err := svc.DeliveryOut(ctx, detail.Assignment.ID, "op-1", "late", []inventory.StockOp{
		{Ref: tank10, Quantity: inventory.Tanks(1, 0)},
	})
	require.NoError(t, err)
	require.Len(t, out.Applied, 1)
	assert.Equal(t, result.Successor.ID, out.Applied[0].AssignmentID)

	balance, err := svc.Ledger.CurrentBalance(ctx, result.Successor.ID, tank10)
	require.NoError(t, err)
	assert.Equal(t, inventory.Tanks(5, 0), balance.Current)
}
