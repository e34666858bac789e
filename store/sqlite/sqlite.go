/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements inventory.TxStore (assignments, lines, ledger records, status
  history, current pointers) and catalog.Provider (tank types and items)
  on one database file. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements touch inventory_transactions or
    status_history
  - Line balances change only through UpdateLineQuantity, which the ledger
    pairs with an appended record in the same transaction
  - The CHECK constraints on assignment_lines backstop the engine's
    non-negative invariant at the storage layer

KEY TABLES:
  assignments:            One per (pairing, date), enforced by unique index
  assignment_lines:       One per (assignment, catalog ref)
  inventory_transactions: Immutable quantity ledger
  status_history:         Immutable status audit trail
  current_pointers:       Active assignment per pairing
  tank_types, inventory_items: The catalog

CONCURRENCY:
  Uses sync.RWMutex for single-writer semantics; WithTx holds the write
  lock for the whole unit of work, which is what the engine's
  read-modify-write cycles require. SQLite is opened in WAL mode.

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := inventory.NewService(store, store, clock)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - inventory/store.go: Interface definitions
  - inventory/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/LazyCPU-org/lpg-backend-sub002/catalog"
	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
)

// Store implements inventory.TxStore and catalog.Provider using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The mutex serializes writers; a second connection would bypass it.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Assignments (one per pairing per calendar day)
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		pairing_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		assigned_by TEXT NOT NULL DEFAULT '',
		auto_assignment BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(pairing_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_pairing_date
		ON assignments(pairing_id, date);
	CREATE INDEX IF NOT EXISTS idx_assignments_status
		ON assignments(status);

	-- Lines (one per catalog ref within an assignment)
	CREATE TABLE IF NOT EXISTS assignment_lines (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id),
		ref_kind TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		sell_price TEXT NOT NULL,
		assigned_full INTEGER NOT NULL DEFAULT 0,
		assigned_empty INTEGER NOT NULL DEFAULT 0,
		current_full INTEGER NOT NULL DEFAULT 0 CHECK (current_full >= 0),
		current_empty INTEGER NOT NULL DEFAULT 0 CHECK (current_empty >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(assignment_id, ref_kind, ref_id)
	);

	CREATE INDEX IF NOT EXISTS idx_lines_assignment
		ON assignment_lines(assignment_id);

	-- Quantity ledger (append-only)
	CREATE TABLE IF NOT EXISTS inventory_transactions (
		id TEXT PRIMARY KEY,
		line_id TEXT NOT NULL REFERENCES assignment_lines(id),
		assignment_id TEXT NOT NULL,
		ref_kind TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		delta_full INTEGER NOT NULL,
		delta_empty INTEGER NOT NULL,
		kind TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		reference_id TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_line
		ON inventory_transactions(line_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_assignment
		ON inventory_transactions(assignment_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON inventory_transactions(reference_id) WHERE reference_id != '';

	-- Status audit trail (append-only)
	CREATE TABLE IF NOT EXISTS status_history (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id),
		from_status TEXT,
		to_status TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_assignment
		ON status_history(assignment_id, created_at);

	-- Active assignment per pairing
	CREATE TABLE IF NOT EXISTS current_pointers (
		pairing_id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id),
		updated_at TEXT NOT NULL
	);

	-- Catalog
	CREATE TABLE IF NOT EXISTS tank_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		weight TEXT NOT NULL DEFAULT '',
		purchase_price TEXT NOT NULL,
		sell_price TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		sell_price TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ASSIGNMENT STORE (inventory.AssignmentStore interface)
// =============================================================================

// CreateAssignment inserts the header and all its lines.
func (s *Store) CreateAssignment(ctx context.Context, a inventory.Assignment, lines []inventory.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAssignment(ctx, s.db, a, lines)
}

func (s *Store) createAssignment(ctx context.Context, q querier, a inventory.Assignment, lines []inventory.Line) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO assignments
		(id, pairing_id, date, status, assigned_by, auto_assignment, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PairingID, a.Date.String(), string(a.Status),
		a.AssignedBy, a.AutoAssignment, a.Notes,
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			existing, getErr := s.getByPairingAndDate(ctx, q, a.PairingID, a.Date)
			dup := &inventory.DuplicateAssignmentError{PairingID: a.PairingID, Date: a.Date}
			if getErr == nil && existing != nil {
				dup.Existing = existing.ID
			}
			return dup
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	for _, line := range lines {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO assignment_lines
			(id, assignment_id, ref_kind, ref_id, purchase_price, sell_price,
			 assigned_full, assigned_empty, current_full, current_empty, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, line.AssignmentID, string(line.Ref.Kind), line.Ref.ID,
			line.PurchasePrice.String(), line.SellPrice.String(),
			line.Assigned.Full, line.Assigned.Empty,
			line.Current.Full, line.Current.Empty,
			line.CreatedAt.Format(time.RFC3339), line.UpdatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert line %s: %w", line.ID, err)
		}
	}
	return nil
}

// GetAssignment returns the header, or (nil, nil).
func (s *Store) GetAssignment(ctx context.Context, id inventory.AssignmentID) (*inventory.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAssignment(ctx, s.db, id)
}

func (s *Store) getAssignment(ctx context.Context, q querier, id inventory.AssignmentID) (*inventory.Assignment, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, pairing_id, date, status, assigned_by, auto_assignment, notes, created_at, updated_at
		FROM assignments WHERE id = ?`, id)
	return scanAssignment(row)
}

// GetByPairingAndDate returns the assignment for (pairing, date), or (nil, nil).
func (s *Store) GetByPairingAndDate(ctx context.Context, pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByPairingAndDate(ctx, s.db, pairing, date)
}

func (s *Store) getByPairingAndDate(ctx context.Context, q querier, pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, pairing_id, date, status, assigned_by, auto_assignment, notes, created_at, updated_at
		FROM assignments WHERE pairing_id = ? AND date = ?`, pairing, date.String())
	return scanAssignment(row)
}

func scanAssignment(row *sql.Row) (*inventory.Assignment, error) {
	var (
		a                    inventory.Assignment
		dateStr              string
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(&a.ID, &a.PairingID, &dateStr, &status, &a.AssignedBy,
		&a.AutoAssignment, &a.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}

	a.Date, err = inventory.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt assignment date %q: %w", dateStr, err)
	}
	a.Status = inventory.Status(status)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &a, nil
}

// SetStatus updates the header status and updated-at stamp.
func (s *Store) SetStatus(ctx context.Context, id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStatus(ctx, s.db, id, status, at)
}

func (s *Store) setStatus(ctx context.Context, q querier, id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	res, err := q.ExecContext(ctx,
		"UPDATE assignments SET status = ?, updated_at = ? WHERE id = ?",
		string(status), at.Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment %s: %w", id, inventory.ErrNotFound)
	}
	return nil
}

// Lines returns all lines of an assignment in a stable order.
func (s *Store) Lines(ctx context.Context, id inventory.AssignmentID) ([]inventory.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines(ctx, s.db, id)
}

func (s *Store) lines(ctx context.Context, q querier, id inventory.AssignmentID) ([]inventory.Line, error) {
	rows, err := q.QueryContext(ctx, lineColumns+" FROM assignment_lines WHERE assignment_id = ? ORDER BY ref_kind, ref_id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []inventory.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const lineColumns = `SELECT id, assignment_id, ref_kind, ref_id, purchase_price, sell_price,
	assigned_full, assigned_empty, current_full, current_empty, created_at, updated_at`

// GetLine returns one line, or (nil, nil).
func (s *Store) GetLine(ctx context.Context, id inventory.LineID) (*inventory.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLine(ctx, s.db, id)
}

func (s *Store) getLine(ctx context.Context, q querier, id inventory.LineID) (*inventory.Line, error) {
	rows, err := q.QueryContext(ctx, lineColumns+" FROM assignment_lines WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query line: %w", err)
	}
	defer rows.Close()
	return firstLine(rows)
}

// FindLine resolves (assignment, catalog ref) to a line, or (nil, nil).
func (s *Store) FindLine(ctx context.Context, id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLine(ctx, s.db, id, ref)
}

func (s *Store) findLine(ctx context.Context, q querier, id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	rows, err := q.QueryContext(ctx,
		lineColumns+" FROM assignment_lines WHERE assignment_id = ? AND ref_kind = ? AND ref_id = ?",
		id, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line: %w", err)
	}
	defer rows.Close()
	return firstLine(rows)
}

func firstLine(rows *sql.Rows) (*inventory.Line, error) {
	if !rows.Next() {
		return nil, rows.Err()
	}
	line, err := scanLine(rows)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func scanLine(rows *sql.Rows) (inventory.Line, error) {
	var (
		line                       inventory.Line
		refKind                    string
		purchasePrice, sellPrice   string
		createdAt, updatedAt       string
	)
	err := rows.Scan(&line.ID, &line.AssignmentID, &refKind, &line.Ref.ID,
		&purchasePrice, &sellPrice,
		&line.Assigned.Full, &line.Assigned.Empty,
		&line.Current.Full, &line.Current.Empty,
		&createdAt, &updatedAt)
	if err != nil {
		return line, fmt.Errorf("failed to scan line: %w", err)
	}

	line.Ref.Kind = inventory.RefKind(refKind)
	line.PurchasePrice, err = decimal.NewFromString(purchasePrice)
	if err != nil {
		return line, fmt.Errorf("corrupt purchase price %q: %w", purchasePrice, err)
	}
	line.SellPrice, err = decimal.NewFromString(sellPrice)
	if err != nil {
		return line, fmt.Errorf("corrupt sell price %q: %w", sellPrice, err)
	}
	line.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	line.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return line, nil
}

// AppendHistory appends one status audit entry.
func (s *Store) AppendHistory(ctx context.Context, entry inventory.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendHistory(ctx, s.db, entry)
}

func (s *Store) appendHistory(ctx context.Context, q querier, entry inventory.StatusHistoryEntry) error {
	var from *string
	if entry.From != nil {
		v := string(*entry.From)
		from = &v
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO status_history
		(id, assignment_id, from_status, to_status, actor_id, reason, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.AssignmentID, from, string(entry.To),
		entry.ActorID, entry.Reason, entry.Notes,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// History returns the audit trail, oldest first.
func (s *Store) History(ctx context.Context, id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history(ctx, s.db, id)
}

func (s *Store) history(ctx context.Context, q querier, id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, assignment_id, from_status, to_status, actor_id, reason, notes, created_at
		FROM status_history WHERE assignment_id = ?
		ORDER BY created_at ASC, rowid ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []inventory.StatusHistoryEntry
	for rows.Next() {
		var (
			e         inventory.StatusHistoryEntry
			from      sql.NullString
			to        string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.AssignmentID, &from, &to, &e.ActorID, &e.Reason, &e.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if from.Valid {
			st := inventory.Status(from.String)
			e.From = &st
		}
		e.To = inventory.Status(to)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// LEDGER STORE (inventory.LedgerStore interface)
// =============================================================================

// AppendRecord appends one ledger entry.
func (s *Store) AppendRecord(ctx context.Context, rec inventory.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendRecord(ctx, s.db, rec)
}

func (s *Store) appendRecord(ctx context.Context, q querier, rec inventory.TransactionRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO inventory_transactions
		(id, line_id, assignment_id, ref_kind, ref_id, delta_full, delta_empty,
		 kind, actor_id, reference_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LineID, rec.AssignmentID, string(rec.Ref.Kind), rec.Ref.ID,
		rec.Delta.Full, rec.Delta.Empty, string(rec.Kind),
		rec.ActorID, rec.ReferenceID, rec.Notes,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// Records returns a line's ledger entries, oldest first.
func (s *Store) Records(ctx context.Context, line inventory.LineID) ([]inventory.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRecords(ctx, s.db, "WHERE line_id = ?", line)
}

// RecordsByAssignment returns every ledger entry of an assignment, oldest first.
func (s *Store) RecordsByAssignment(ctx context.Context, id inventory.AssignmentID) ([]inventory.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRecords(ctx, s.db, "WHERE assignment_id = ?", id)
}

func (s *Store) queryRecords(ctx context.Context, q querier, where string, arg any) ([]inventory.TransactionRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, line_id, assignment_id, ref_kind, ref_id, delta_full, delta_empty,
		       kind, actor_id, reference_id, notes, created_at
		FROM inventory_transactions `+where+`
		ORDER BY created_at ASC, rowid ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []inventory.TransactionRecord
	for rows.Next() {
		var (
			rec       inventory.TransactionRecord
			refKind   string
			kind      string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.LineID, &rec.AssignmentID, &refKind, &rec.Ref.ID,
			&rec.Delta.Full, &rec.Delta.Empty, &kind,
			&rec.ActorID, &rec.ReferenceID, &rec.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		rec.Ref.Kind = inventory.RefKind(refKind)
		rec.Kind = inventory.TransactionKind(kind)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateLineQuantity overwrites a line's current quantity.
func (s *Store) UpdateLineQuantity(ctx context.Context, line inventory.LineID, current inventory.Quantity, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLineQuantity(ctx, s.db, line, current, at)
}

func (s *Store) updateLineQuantity(ctx context.Context, q querier, line inventory.LineID, current inventory.Quantity, at time.Time) error {
	res, err := q.ExecContext(ctx,
		"UPDATE assignment_lines SET current_full = ?, current_empty = ?, updated_at = ? WHERE id = ?",
		current.Full, current.Empty, at.Format(time.RFC3339), line,
	)
	if err != nil {
		return fmt.Errorf("failed to update line quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("line %s: %w", line, inventory.ErrNotFound)
	}
	return nil
}

// =============================================================================
// POINTER STORE (inventory.PointerStore interface)
// =============================================================================

// GetPointer returns the active-assignment pointer, or (nil, nil).
func (s *Store) GetPointer(ctx context.Context, pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPointer(ctx, s.db, pairing)
}

func (s *Store) getPointer(ctx context.Context, q querier, pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	var (
		p         inventory.CurrentPointer
		updatedAt string
	)
	err := q.QueryRowContext(ctx,
		"SELECT pairing_id, assignment_id, updated_at FROM current_pointers WHERE pairing_id = ?",
		pairing,
	).Scan(&p.PairingID, &p.AssignmentID, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pointer: %w", err)
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// SetPointer upserts the pointer.
func (s *Store) SetPointer(ctx context.Context, p inventory.CurrentPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPointer(ctx, s.db, p)
}

func (s *Store) setPointer(ctx context.Context, q querier, p inventory.CurrentPointer) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO current_pointers (pairing_id, assignment_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(pairing_id) DO UPDATE SET
			assignment_id = excluded.assignment_id,
			updated_at = excluded.updated_at`,
		p.PairingID, p.AssignmentID, p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to set pointer: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (inventory.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(inventory.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) CreateAssignment(ctx context.Context, a inventory.Assignment, lines []inventory.Line) error {
	return ts.parent.createAssignment(ctx, ts.tx, a, lines)
}

func (ts *txStore) GetAssignment(ctx context.Context, id inventory.AssignmentID) (*inventory.Assignment, error) {
	return ts.parent.getAssignment(ctx, ts.tx, id)
}

func (ts *txStore) GetByPairingAndDate(ctx context.Context, pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	return ts.parent.getByPairingAndDate(ctx, ts.tx, pairing, date)
}

func (ts *txStore) SetStatus(ctx context.Context, id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	return ts.parent.setStatus(ctx, ts.tx, id, status, at)
}

func (ts *txStore) Lines(ctx context.Context, id inventory.AssignmentID) ([]inventory.Line, error) {
	return ts.parent.lines(ctx, ts.tx, id)
}

func (ts *txStore) GetLine(ctx context.Context, id inventory.LineID) (*inventory.Line, error) {
	return ts.parent.getLine(ctx, ts.tx, id)
}

func (ts *txStore) FindLine(ctx context.Context, id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	return ts.parent.findLine(ctx, ts.tx, id, ref)
}

func (ts *txStore) AppendHistory(ctx context.Context, entry inventory.StatusHistoryEntry) error {
	return ts.parent.appendHistory(ctx, ts.tx, entry)
}

func (ts *txStore) History(ctx context.Context, id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	return ts.parent.history(ctx, ts.tx, id)
}

func (ts *txStore) AppendRecord(ctx context.Context, rec inventory.TransactionRecord) error {
	return ts.parent.appendRecord(ctx, ts.tx, rec)
}

func (ts *txStore) Records(ctx context.Context, line inventory.LineID) ([]inventory.TransactionRecord, error) {
	return ts.parent.queryRecords(ctx, ts.tx, "WHERE line_id = ?", line)
}

func (ts *txStore) RecordsByAssignment(ctx context.Context, id inventory.AssignmentID) ([]inventory.TransactionRecord, error) {
	return ts.parent.queryRecords(ctx, ts.tx, "WHERE assignment_id = ?", id)
}

func (ts *txStore) UpdateLineQuantity(ctx context.Context, line inventory.LineID, current inventory.Quantity, at time.Time) error {
	return ts.parent.updateLineQuantity(ctx, ts.tx, line, current, at)
}

func (ts *txStore) GetPointer(ctx context.Context, pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	return ts.parent.getPointer(ctx, ts.tx, pairing)
}

func (ts *txStore) SetPointer(ctx context.Context, p inventory.CurrentPointer) error {
	return ts.parent.setPointer(ctx, ts.tx, p)
}

// =============================================================================
// CATALOG (catalog.Provider interface + admin)
// =============================================================================

// TankTypes returns the tank formats the store carries.
func (s *Store) TankTypes(ctx context.Context, pairing string) ([]catalog.TankType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, weight, purchase_price, sell_price FROM tank_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query tank types: %w", err)
	}
	defer rows.Close()

	var tanks []catalog.TankType
	for rows.Next() {
		var (
			t                        catalog.TankType
			purchasePrice, sellPrice string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Weight, &purchasePrice, &sellPrice); err != nil {
			return nil, fmt.Errorf("failed to scan tank type: %w", err)
		}
		if t.PurchasePrice, err = decimal.NewFromString(purchasePrice); err != nil {
			return nil, fmt.Errorf("corrupt purchase price %q: %w", purchasePrice, err)
		}
		if t.SellPrice, err = decimal.NewFromString(sellPrice); err != nil {
			return nil, fmt.Errorf("corrupt sell price %q: %w", sellPrice, err)
		}
		tanks = append(tanks, t)
	}
	return tanks, rows.Err()
}

// Items returns the auxiliary items the store carries.
func (s *Store) Items(ctx context.Context, pairing string) ([]catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, purchase_price, sell_price FROM inventory_items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var (
			it                       catalog.Item
			purchasePrice, sellPrice string
		)
		if err := rows.Scan(&it.ID, &it.Name, &purchasePrice, &sellPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if it.PurchasePrice, err = decimal.NewFromString(purchasePrice); err != nil {
			return nil, fmt.Errorf("corrupt purchase price %q: %w", purchasePrice, err)
		}
		if it.SellPrice, err = decimal.NewFromString(sellPrice); err != nil {
			return nil, fmt.Errorf("corrupt sell price %q: %w", sellPrice, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveTankType upserts a catalog tank type.
func (s *Store) SaveTankType(ctx context.Context, t catalog.TankType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tank_types (id, name, weight, purchase_price, sell_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			weight = excluded.weight,
			purchase_price = excluded.purchase_price,
			sell_price = excluded.sell_price`,
		t.ID, t.Name, t.Weight, t.PurchasePrice.String(), t.SellPrice.String(),
	)
	return err
}

// SaveItem upserts a catalog item.
func (s *Store) SaveItem(ctx context.Context, it catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, name, purchase_price, sell_price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			purchase_price = excluded.purchase_price,
			sell_price = excluded.sell_price`,
		it.ID, it.Name, it.PurchasePrice.String(), it.SellPrice.String(),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"inventory_transactions", "status_history", "current_pointers",
		"assignment_lines", "assignments", "tank_types", "inventory_items",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
