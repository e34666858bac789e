/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Quantities are
  split into explicit full/empty counts; prices travel as decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateAssignmentRequest opens a dated assignment for a pairing.
type CreateAssignmentRequest struct {
	Date       string `json:"date"` // YYYY-MM-DD; empty means today
	AssignedBy string `json:"assigned_by"`
	Notes      string `json:"notes,omitempty"`
}

// UpdateStatusRequest moves an assignment through the state machine.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
}

// StockOpDTO addresses one catalog ref within a delivery, return, or
// adjustment. Full/Empty are magnitudes for deliveries and returns, signed
// deltas for adjustments. Item refs use full only.
type StockOpDTO struct {
	RefKind string `json:"ref_kind"` // "tank" or "item"
	RefID   string `json:"ref_id"`
	Full    int64  `json:"full"`
	Empty   int64  `json:"empty"`
	Notes   string `json:"notes,omitempty"`
}

// BatchRequest carries the operations of a delivery, return, or adjustment.
type BatchRequest struct {
	ActorID     string       `json:"actor_id"`
	ReferenceID string       `json:"reference_id,omitempty"`
	Operations  []StockOpDTO `json:"operations"`
}

// ConsolidateRequest triggers the day rollover.
type ConsolidateRequest struct {
	ActorID      string `json:"actor_id"`
	SkipWeekends *bool  `json:"skip_weekends,omitempty"` // nil uses the server default
}

// SaveTankTypeRequest upserts a catalog tank type.
type SaveTankTypeRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Weight        string `json:"weight"`
	PurchasePrice string `json:"purchase_price"`
	SellPrice     string `json:"sell_price"`
}

// SaveItemRequest upserts a catalog item.
type SaveItemRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PurchasePrice string `json:"purchase_price"`
	SellPrice     string `json:"sell_price"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// QuantityDTO is a full/empty count pair.
type QuantityDTO struct {
	Full  int64 `json:"full"`
	Empty int64 `json:"empty"`
}

// AssignmentDTO represents an assignment header in API responses.
type AssignmentDTO struct {
	ID             string `json:"id"`
	PairingID      string `json:"pairing_id"`
	Date           string `json:"date"`
	Status         string `json:"status"`
	AssignedBy     string `json:"assigned_by"`
	AutoAssignment bool   `json:"auto_assignment"`
	Notes          string `json:"notes,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// LineDTO represents an assignment line.
type LineDTO struct {
	ID            string      `json:"id"`
	RefKind       string      `json:"ref_kind"`
	RefID         string      `json:"ref_id"`
	PurchasePrice string      `json:"purchase_price"`
	SellPrice     string      `json:"sell_price"`
	Assigned      QuantityDTO `json:"assigned"`
	Current       QuantityDTO `json:"current"`
}

// AssignmentDetailDTO bundles a header with its lines.
type AssignmentDetailDTO struct {
	Assignment AssignmentDTO `json:"assignment"`
	Lines      []LineDTO     `json:"lines"`
}

// BalanceDTO is one line's balance projection.
type BalanceDTO struct {
	LineID   string      `json:"line_id"`
	RefKind  string      `json:"ref_kind"`
	RefID    string      `json:"ref_id"`
	Assigned QuantityDTO `json:"assigned"`
	Current  QuantityDTO `json:"current"`
}

// TransactionDTO represents one ledger entry.
type TransactionDTO struct {
	ID          string      `json:"id"`
	LineID      string      `json:"line_id"`
	RefKind     string      `json:"ref_kind"`
	RefID       string      `json:"ref_id"`
	Delta       QuantityDTO `json:"delta"`
	Kind        string      `json:"kind"`
	ActorID     string      `json:"actor_id,omitempty"`
	ReferenceID string      `json:"reference_id,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   string      `json:"created_at"`
}

// HistoryEntryDTO represents one status audit entry.
type HistoryEntryDTO struct {
	ID        string  `json:"id"`
	From      *string `json:"from,omitempty"`
	To        string  `json:"to"`
	ActorID   string  `json:"actor_id,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// BatchFailureDTO is one isolated failure from a non-atomic batch.
type BatchFailureDTO struct {
	Index   int    `json:"index"`
	RefKind string `json:"ref_kind"`
	RefID   string `json:"ref_id"`
	Error   string `json:"error"`
}

// BatchResultDTO reports what a batch did.
type BatchResultDTO struct {
	Applied  []TransactionDTO  `json:"applied"`
	Failures []BatchFailureDTO `json:"failures,omitempty"`
}

// ConsolidationResultDTO reports both sides of a day rollover.
type ConsolidationResultDTO struct {
	Closed        AssignmentDTO       `json:"closed"`
	Successor     AssignmentDetailDTO `json:"successor"`
	StaleRecovery bool                `json:"stale_recovery"`
}

// TankTypeDTO represents a catalog tank type.
type TankTypeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Weight        string `json:"weight"`
	PurchasePrice string `json:"purchase_price"`
	SellPrice     string `json:"sell_price"`
}

// ItemDTO represents a catalog item.
type ItemDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PurchasePrice string `json:"purchase_price"`
	SellPrice     string `json:"sell_price"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
