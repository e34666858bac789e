/*
handlers.go - HTTP API handlers for the inventory assignment system

PURPOSE:
  Exposes the inventory engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Pairings:
    POST   /api/pairings/{id}/assignments          Open a dated assignment
    POST   /api/pairings/{id}/assignments/today    Idempotent get-or-create
    GET    /api/pairings/{id}/assignments/current  Active assignment

  Assignments:
    GET    /api/assignments/{id}                 Header + lines
    PUT    /api/assignments/{id}/status          State-machine transition
    POST   /api/assignments/{id}/delivery-out    Atomic batch decrement
    POST   /api/assignments/{id}/delivery-return Atomic batch increment
    POST   /api/assignments/{id}/adjustments     Best-effort corrections
    POST   /api/assignments/{id}/consolidate     Day rollover
    GET    /api/assignments/{id}/balances        Line balances
    GET    /api/assignments/{id}/transactions    Ledger entries
    GET    /api/assignments/{id}/history         Status audit trail

  Catalog:
    GET/POST /api/catalog/tanks   Tank types
    GET/POST /api/catalog/items   Auxiliary items

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input
  - 404: Assignment/line not found
  - 409: Duplicate day, invalid status transition
  - 422: Insufficient quantity
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/LazyCPU-org/lpg-backend-sub002/catalog"
	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// CatalogAdmin is the write side of the catalog, implemented by the SQLite
// store alongside catalog.Provider.
type CatalogAdmin interface {
	catalog.Provider
	SaveTankType(ctx context.Context, t catalog.TankType) error
	SaveItem(ctx context.Context, it catalog.Item) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *inventory.Service
	Catalog CatalogAdmin
}

// NewHandler creates a new handler.
func NewHandler(svc *inventory.Service, cat CatalogAdmin) *Handler {
	return &Handler{Service: svc, Catalog: cat}
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// CreateAssignment opens a dated assignment for a pairing.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	pairing := inventory.PairingID(chi.URLParam(r, "id"))

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		date inventory.Date
		err  error
	)
	if req.Date == "" {
		date = h.Service.Clock.Today()
	} else {
		date, err = inventory.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	detail, err := h.Service.CreateAssignment(r.Context(), pairing, date, req.AssignedBy, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDetailDTO(*detail))
}

// CreateOrGetToday returns today's assignment, creating it if absent.
func (h *Handler) CreateOrGetToday(w http.ResponseWriter, r *http.Request) {
	pairing := inventory.PairingID(chi.URLParam(r, "id"))

	var req CreateAssignmentRequest
	// Body is optional for the idempotent form.
	_ = json.NewDecoder(r.Body).Decode(&req)

	detail, err := h.Service.CreateOrGetForToday(r.Context(), pairing, req.AssignedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailDTO(*detail))
}

// GetCurrentAssignment resolves the pairing's active assignment.
func (h *Handler) GetCurrentAssignment(w http.ResponseWriter, r *http.Request) {
	pairing := inventory.PairingID(chi.URLParam(r, "id"))

	detail, err := h.Service.CurrentAssignment(r.Context(), pairing)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailDTO(*detail))
}

// GetAssignment returns a header with its lines.
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	detail, err := h.Service.GetAssignment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailDTO(*detail))
}

// UpdateStatus transitions an assignment through the state machine.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := inventory.Status(req.Status)
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, "Unknown status: "+req.Status, nil)
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), id, status, req.ActorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(*updated))
}

// GetHistory returns the status audit trail.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	entries, err := h.Service.StatusHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dto := HistoryEntryDTO{
			ID:        string(e.ID),
			To:        string(e.To),
			ActorID:   e.ActorID,
			Reason:    e.Reason,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.From != nil {
			from := string(*e.From)
			dto.From = &from
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// DeliveryOut records an outgoing delivery (atomic decrement, kind=sale).
func (h *Handler) DeliveryOut(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, h.Service.DeliveryOut)
}

// DeliveryReturn records returned stock (atomic increment, kind=return).
func (h *Handler) DeliveryReturn(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, h.Service.DeliveryReturn)
}

// StockAdjustment applies best-effort signed corrections (kind=purchase).
func (h *Handler) StockAdjustment(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, h.Service.StockAdjustment)
}

type batchFn func(ctx context.Context, id inventory.AssignmentID, actorID, referenceID string, ops []inventory.StockOp) (*inventory.BatchResult, error)

func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, fn batchFn) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "At least one operation is required", nil)
		return
	}

	ops := make([]inventory.StockOp, len(req.Operations))
	for i, op := range req.Operations {
		kind := inventory.RefKind(op.RefKind)
		if kind != inventory.RefTank && kind != inventory.RefItem {
			writeError(w, http.StatusBadRequest, "Unknown ref_kind: "+op.RefKind, nil)
			return
		}
		ops[i] = inventory.StockOp{
			Ref:      inventory.CatalogRef{Kind: kind, ID: op.RefID},
			Quantity: inventory.Quantity{Full: op.Full, Empty: op.Empty},
			Notes:    op.Notes,
		}
	}

	result, err := fn(r.Context(), id, req.ActorID, req.ReferenceID, ops)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResultDTO(*result))
}

// GetBalances returns the assignment's line balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	balances, err := h.Service.CurrentBalances(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]BalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = BalanceDTO{
			LineID:   string(b.LineID),
			RefKind:  string(b.Ref.Kind),
			RefID:    b.Ref.ID,
			Assigned: QuantityDTO{Full: b.Assigned.Full, Empty: b.Assigned.Empty},
			Current:  QuantityDTO{Full: b.Current.Full, Empty: b.Current.Empty},
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTransactions returns the assignment's ledger entries.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	records, err := h.Service.Transactions(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]TransactionDTO, len(records))
	for i, rec := range records {
		dtos[i] = toTransactionDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Consolidate closes the assignment and opens its successor.
func (h *Handler) Consolidate(w http.ResponseWriter, r *http.Request) {
	id := inventory.AssignmentID(chi.URLParam(r, "id"))

	var req ConsolidateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	skipWeekends := h.Service.SkipWeekends
	if req.SkipWeekends != nil {
		skipWeekends = *req.SkipWeekends
	}

	result, err := h.Service.ConsolidateAndCreateNext(r.Context(), id, req.ActorID, skipWeekends)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConsolidationResultDTO{
		Closed: toAssignmentDTO(result.Closed),
		Successor: toDetailDTO(inventory.AssignmentDetail{
			Assignment: result.Successor,
			Lines:      result.SuccessorLines,
		}),
		StaleRecovery: result.StaleRecovery,
	})
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListTankTypes returns the catalog's tank types.
func (h *Handler) ListTankTypes(w http.ResponseWriter, r *http.Request) {
	tanks, err := h.Catalog.TankTypes(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tank types", err)
		return
	}

	dtos := make([]TankTypeDTO, len(tanks))
	for i, t := range tanks {
		dtos[i] = TankTypeDTO{
			ID:            t.ID,
			Name:          t.Name,
			Weight:        t.Weight,
			PurchasePrice: t.PurchasePrice.String(),
			SellPrice:     t.SellPrice.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveTankType upserts a catalog tank type.
func (h *Handler) SaveTankType(w http.ResponseWriter, r *http.Request) {
	var req SaveTankTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	purchase, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase_price", err)
		return
	}
	sell, err := decimal.NewFromString(req.SellPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sell_price", err)
		return
	}

	t := catalog.TankType{ID: req.ID, Name: req.Name, Weight: req.Weight, PurchasePrice: purchase, SellPrice: sell}
	if err := h.Catalog.SaveTankType(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save tank type", err)
		return
	}
	writeJSON(w, http.StatusCreated, TankTypeDTO{
		ID: t.ID, Name: t.Name, Weight: t.Weight,
		PurchasePrice: t.PurchasePrice.String(), SellPrice: t.SellPrice.String(),
	})
}

// ListItems returns the catalog's auxiliary items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Items(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = ItemDTO{
			ID:            it.ID,
			Name:          it.Name,
			PurchasePrice: it.PurchasePrice.String(),
			SellPrice:     it.SellPrice.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveItem upserts a catalog item.
func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	var req SaveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	purchase, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase_price", err)
		return
	}
	sell, err := decimal.NewFromString(req.SellPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sell_price", err)
		return
	}

	it := catalog.Item{ID: req.ID, Name: req.Name, PurchasePrice: purchase, SellPrice: sell}
	if err := h.Catalog.SaveItem(r.Context(), it); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save item", err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemDTO{
		ID: it.ID, Name: it.Name,
		PurchasePrice: it.PurchasePrice.String(), SellPrice: it.SellPrice.String(),
	})
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

func toAssignmentDTO(a inventory.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:             string(a.ID),
		PairingID:      string(a.PairingID),
		Date:           a.Date.String(),
		Status:         string(a.Status),
		AssignedBy:     a.AssignedBy,
		AutoAssignment: a.AutoAssignment,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

func toDetailDTO(d inventory.AssignmentDetail) AssignmentDetailDTO {
	lines := make([]LineDTO, len(d.Lines))
	for i, line := range d.Lines {
		lines[i] = LineDTO{
			ID:            string(line.ID),
			RefKind:       string(line.Ref.Kind),
			RefID:         line.Ref.ID,
			PurchasePrice: line.PurchasePrice.String(),
			SellPrice:     line.SellPrice.String(),
			Assigned:      QuantityDTO{Full: line.Assigned.Full, Empty: line.Assigned.Empty},
			Current:       QuantityDTO{Full: line.Current.Full, Empty: line.Current.Empty},
		}
	}
	return AssignmentDetailDTO{Assignment: toAssignmentDTO(d.Assignment), Lines: lines}
}

func toTransactionDTO(rec inventory.TransactionRecord) TransactionDTO {
	return TransactionDTO{
		ID:          string(rec.ID),
		LineID:      string(rec.LineID),
		RefKind:     string(rec.Ref.Kind),
		RefID:       rec.Ref.ID,
		Delta:       QuantityDTO{Full: rec.Delta.Full, Empty: rec.Delta.Empty},
		Kind:        string(rec.Kind),
		ActorID:     rec.ActorID,
		ReferenceID: rec.ReferenceID,
		Notes:       rec.Notes,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toBatchResultDTO(result inventory.BatchResult) BatchResultDTO {
	dto := BatchResultDTO{Applied: make([]TransactionDTO, len(result.Applied))}
	for i, rec := range result.Applied {
		dto.Applied[i] = toTransactionDTO(rec)
	}
	for _, f := range result.Failures {
		dto.Failures = append(dto.Failures, BatchFailureDTO{
			Index:   f.Index,
			RefKind: string(f.Ref.Kind),
			RefID:   f.Ref.ID,
			Error:   f.Err.Error(),
		})
	}
	return dto
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps engine errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case inventory.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case inventory.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, inventory.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid status transition", err)
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		writeError(w, http.StatusUnprocessableEntity, "Insufficient quantity", err)
	case inventory.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
