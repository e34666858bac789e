// Package store provides an in-memory TxStore for tests and demos.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements inventory.TxStore with maps. WithTx is simulated with a
// snapshot + restore on error, which gives the same all-or-nothing view the
// SQLite store provides.
type Memory struct {
	mu sync.RWMutex

	assignments map[inventory.AssignmentID]inventory.Assignment
	byDay       map[dayKey]inventory.AssignmentID
	lines       map[inventory.LineID]inventory.Line
	records     []inventory.TransactionRecord
	history     []inventory.StatusHistoryEntry
	pointers    map[inventory.PairingID]inventory.CurrentPointer
}

type dayKey struct {
	Pairing inventory.PairingID
	Date    string
}

func NewMemory() *Memory {
	return &Memory{
		assignments: make(map[inventory.AssignmentID]inventory.Assignment),
		byDay:       make(map[dayKey]inventory.AssignmentID),
		lines:       make(map[inventory.LineID]inventory.Line),
		pointers:    make(map[inventory.PairingID]inventory.CurrentPointer),
	}
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (m *Memory) CreateAssignment(ctx context.Context, a inventory.Assignment, lines []inventory.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAssignmentLocked(a, lines)
}

func (m *Memory) createAssignmentLocked(a inventory.Assignment, lines []inventory.Line) error {
	k := dayKey{Pairing: a.PairingID, Date: a.Date.String()}
	if existing, ok := m.byDay[k]; ok {
		return &inventory.DuplicateAssignmentError{PairingID: a.PairingID, Date: a.Date, Existing: existing}
	}
	m.assignments[a.ID] = a
	m.byDay[k] = a.ID
	for _, line := range lines {
		m.lines[line.ID] = line
	}
	return nil
}

func (m *Memory) GetAssignment(ctx context.Context, id inventory.AssignmentID) (*inventory.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAssignmentLocked(id)
}

func (m *Memory) getAssignmentLocked(id inventory.AssignmentID) (*inventory.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) GetByPairingAndDate(ctx context.Context, pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getByDayLocked(pairing, date)
}

func (m *Memory) getByDayLocked(pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	id, ok := m.byDay[dayKey{Pairing: pairing, Date: date.String()}]
	if !ok {
		return nil, nil
	}
	return m.getAssignmentLocked(id)
}

func (m *Memory) SetStatus(ctx context.Context, id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStatusLocked(id, status, at)
}

func (m *Memory) setStatusLocked(id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	a, ok := m.assignments[id]
	if !ok {
		return inventory.ErrInternal
	}
	a.Status = status
	a.UpdatedAt = at
	m.assignments[id] = a
	return nil
}

func (m *Memory) Lines(ctx context.Context, id inventory.AssignmentID) ([]inventory.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.linesLocked(id)
}

func (m *Memory) linesLocked(id inventory.AssignmentID) ([]inventory.Line, error) {
	var out []inventory.Line
	for _, line := range m.lines {
		if line.AssignmentID == id {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.String() < out[j].Ref.String() })
	return out, nil
}

func (m *Memory) GetLine(ctx context.Context, id inventory.LineID) (*inventory.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLineLocked(id)
}

func (m *Memory) getLineLocked(id inventory.LineID) (*inventory.Line, error) {
	line, ok := m.lines[id]
	if !ok {
		return nil, nil
	}
	return &line, nil
}

func (m *Memory) FindLine(ctx context.Context, id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLineLocked(id, ref)
}

func (m *Memory) findLineLocked(id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	for _, line := range m.lines {
		if line.AssignmentID == id && line.Ref == ref {
			line := line
			return &line, nil
		}
	}
	return nil, nil
}

func (m *Memory) AppendHistory(ctx context.Context, entry inventory.StatusHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendHistoryLocked(entry)
}

func (m *Memory) appendHistoryLocked(entry inventory.StatusHistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func (m *Memory) History(ctx context.Context, id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.historyLocked(id)
}

func (m *Memory) historyLocked(id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	var out []inventory.StatusHistoryEntry
	for _, e := range m.history {
		if e.AssignmentID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) AppendRecord(ctx context.Context, rec inventory.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendRecordLocked(rec)
}

func (m *Memory) appendRecordLocked(rec inventory.TransactionRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) Records(ctx context.Context, line inventory.LineID) ([]inventory.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recordsLocked(line)
}

func (m *Memory) recordsLocked(line inventory.LineID) ([]inventory.TransactionRecord, error) {
	var out []inventory.TransactionRecord
	for _, rec := range m.records {
		if rec.LineID == line {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) RecordsByAssignment(ctx context.Context, id inventory.AssignmentID) ([]inventory.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recordsByAssignmentLocked(id)
}

func (m *Memory) recordsByAssignmentLocked(id inventory.AssignmentID) ([]inventory.TransactionRecord, error) {
	var out []inventory.TransactionRecord
	for _, rec := range m.records {
		if rec.AssignmentID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) UpdateLineQuantity(ctx context.Context, line inventory.LineID, current inventory.Quantity, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLineQuantityLocked(line, current, at)
}

func (m *Memory) updateLineQuantityLocked(line inventory.LineID, current inventory.Quantity, at time.Time) error {
	l, ok := m.lines[line]
	if !ok {
		return inventory.ErrInternal
	}
	l.Current = current
	l.UpdatedAt = at
	m.lines[line] = l
	return nil
}

// =============================================================================
// POINTER STORE
// =============================================================================

func (m *Memory) GetPointer(ctx context.Context, pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPointerLocked(pairing)
}

func (m *Memory) getPointerLocked(pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	p, ok := m.pointers[pairing]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) SetPointer(ctx context.Context, p inventory.CurrentPointer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setPointerLocked(p)
}

func (m *Memory) setPointerLocked(p inventory.CurrentPointer) error {
	m.pointers[p.PairingID] = p
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn against a transactional view. On error, the store is
// restored from a snapshot taken before fn ran.
func (m *Memory) WithTx(ctx context.Context, fn func(inventory.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	assignments map[inventory.AssignmentID]inventory.Assignment
	byDay       map[dayKey]inventory.AssignmentID
	lines       map[inventory.LineID]inventory.Line
	records     []inventory.TransactionRecord
	history     []inventory.StatusHistoryEntry
	pointers    map[inventory.PairingID]inventory.CurrentPointer
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		assignments: make(map[inventory.AssignmentID]inventory.Assignment, len(m.assignments)),
		byDay:       make(map[dayKey]inventory.AssignmentID, len(m.byDay)),
		lines:       make(map[inventory.LineID]inventory.Line, len(m.lines)),
		records:     append([]inventory.TransactionRecord(nil), m.records...),
		history:     append([]inventory.StatusHistoryEntry(nil), m.history...),
		pointers:    make(map[inventory.PairingID]inventory.CurrentPointer, len(m.pointers)),
	}
	for k, v := range m.assignments {
		s.assignments[k] = v
	}
	for k, v := range m.byDay {
		s.byDay[k] = v
	}
	for k, v := range m.lines {
		s.lines[k] = v
	}
	for k, v := range m.pointers {
		s.pointers[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.assignments = s.assignments
	m.byDay = s.byDay
	m.lines = s.lines
	m.records = s.records
	m.history = s.history
	m.pointers = s.pointers
}

// txView routes calls back to the locked parent; the parent holds the lock
// for the duration of WithTx.
type txView struct {
	parent *Memory
}

func (t *txView) CreateAssignment(ctx context.Context, a inventory.Assignment, lines []inventory.Line) error {
	return t.parent.createAssignmentLocked(a, lines)
}

func (t *txView) GetAssignment(ctx context.Context, id inventory.AssignmentID) (*inventory.Assignment, error) {
	return t.parent.getAssignmentLocked(id)
}

func (t *txView) GetByPairingAndDate(ctx context.Context, pairing inventory.PairingID, date inventory.Date) (*inventory.Assignment, error) {
	return t.parent.getByDayLocked(pairing, date)
}

func (t *txView) SetStatus(ctx context.Context, id inventory.AssignmentID, status inventory.Status, at time.Time) error {
	return t.parent.setStatusLocked(id, status, at)
}

func (t *txView) Lines(ctx context.Context, id inventory.AssignmentID) ([]inventory.Line, error) {
	return t.parent.linesLocked(id)
}

func (t *txView) GetLine(ctx context.Context, id inventory.LineID) (*inventory.Line, error) {
	return t.parent.getLineLocked(id)
}

func (t *txView) FindLine(ctx context.Context, id inventory.AssignmentID, ref inventory.CatalogRef) (*inventory.Line, error) {
	return t.parent.findLineLocked(id, ref)
}

func (t *txView) AppendHistory(ctx context.Context, entry inventory.StatusHistoryEntry) error {
	return t.parent.appendHistoryLocked(entry)
}

func (t *txView) History(ctx context.Context, id inventory.AssignmentID) ([]inventory.StatusHistoryEntry, error) {
	return t.parent.historyLocked(id)
}

func (t *txView) AppendRecord(ctx context.Context, rec inventory.TransactionRecord) error {
	return t.parent.appendRecordLocked(rec)
}

func (t *txView) Records(ctx context.Context, line inventory.LineID) ([]inventory.TransactionRecord, error) {
	return t.parent.recordsLocked(line)
}

func (t *txView) RecordsByAssignment(ctx context.Context, id inventory.AssignmentID) ([]inventory.TransactionRecord, error) {
	return t.parent.recordsByAssignmentLocked(id)
}

func (t *txView) UpdateLineQuantity(ctx context.Context, line inventory.LineID, current inventory.Quantity, at time.Time) error {
	return t.parent.updateLineQuantityLocked(line, current, at)
}

func (t *txView) GetPointer(ctx context.Context, pairing inventory.PairingID) (*inventory.CurrentPointer, error) {
	return t.parent.getPointerLocked(pairing)
}

func (t *txView) SetPointer(ctx context.Context, p inventory.CurrentPointer) error {
	return t.parent.setPointerLocked(p)
}
