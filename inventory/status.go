/*
status.go - Assignment lifecycle state machine

PURPOSE:
  Validates and records status transitions of an assignment. The transition
  table below is the single source of truth: no edge outside it is ever
  allowed, and every successful transition appends one StatusHistoryEntry.

LIFECYCLE:
  CREATED      Fresh assignment, lines seeded, not yet handed to the operator
  ASSIGNED     Stock physically handed over; ledger operations expected
  CONSOLIDATED Day closed; balances frozen and carried to the successor
  VALIDATED    Supervisor signed off the consolidated figures (terminal)
  OBSERVED     Discrepancy flagged; may loop back to CONSOLIDATED for rework

  CREATED ──→ ASSIGNED ──→ CONSOLIDATED ──→ VALIDATED
                 ↑              │  ↑  │         │
                 └──(reopen)────┘  │  └──→ OBSERVED ──→ VALIDATED
                                   └────────(rework)────────┘

SEE ALSO:
  - consolidation.go: Closes open days into CONSOLIDATED; the OBSERVED
    rework edge re-enters it as a bare transition, without a new successor
  - types.go: StatusHistoryEntry
*/
package inventory

// Status is the lifecycle state of an assignment.
type Status string

const (
	StatusCreated      Status = "created"
	StatusAssigned     Status = "assigned"
	StatusConsolidated Status = "consolidated"
	StatusValidated    Status = "validated"
	StatusObserved     Status = "observed"
)

// IsValid reports whether s is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusAssigned, StatusConsolidated, StatusValidated, StatusObserved:
		return true
	}
	return false
}

// =============================================================================
// TRANSITION TABLE
// =============================================================================

// transitions lists every legal directed edge. Nothing outside this table is
// implicitly allowed.
var transitions = map[Status][]Status{
	StatusCreated:      {StatusAssigned},
	StatusAssigned:     {StatusConsolidated},
	StatusConsolidated: {StatusValidated, StatusObserved, StatusAssigned}, // assigned = administrative reopen
	StatusObserved:     {StatusValidated, StatusConsolidated},             // consolidated = rework loop
	StatusValidated:    {StatusObserved},                                  // administrative flag after approval
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal targets from a state. The returned
// slice is a copy.
func AllowedTransitions(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}

// ValidateTransition returns an InvalidTransitionError if from → to is not in
// the transition table.
func ValidateTransition(from, to Status) error {
	if !to.IsValid() {
		return &InvalidTransitionError{From: from, To: to}
	}
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// ConsolidationPrecondition returns an InvalidTransitionError unless the
// assignment is in a state the consolidation workflow may close. Assignments
// that were created but never handed over still consolidate: an untouched day
// rolls its zero movements forward.
func ConsolidationPrecondition(current Status) error {
	if current == StatusAssigned || current == StatusCreated {
		return nil
	}
	return &InvalidTransitionError{From: current, To: StatusConsolidated}
}
