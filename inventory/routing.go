/*
routing.go - Auto-routing of ledger operations to the active assignment

PURPOSE:
  Fulfillment callers hold on to assignment ids across day boundaries. A
  delivery recorded against yesterday's (now consolidated) assignment must
  land on today's balances, not resurrect a closed day. The router
  substitutes the pairing's current assignment whenever the requested one
  is CONSOLIDATED, and logs the substitution for audit.

  Non-consolidated assignments pass through unchanged. Read-only balance
  queries do not route; only ledger mutations do.
*/
package inventory

import (
	"context"
	"log"
)

// Router redirects ledger operations aimed at a closed assignment to the
// pairing's currently active one.
type Router struct {
	// Logf receives one audit line per substitution. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (r *Router) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Resolve returns the assignment ledger mutations should target. The store
// argument is the caller's transactional view, so routing decisions and the
// mutation they guard commit or roll back together.
func (r *Router) Resolve(ctx context.Context, s Store, id AssignmentID) (*Assignment, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(id)}
	}

	if a.Status != StatusConsolidated {
		return a, nil
	}

	ptr, err := s.GetPointer(ctx, a.PairingID)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, &NotFoundError{
			Entity: "current assignment",
			ID:     string(a.PairingID) + " (requested assignment " + string(id) + " is closed)",
		}
	}

	current, err := s.GetAssignment(ctx, ptr.AssignmentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &NotFoundError{Entity: "assignment", ID: string(ptr.AssignmentID)}
	}

	r.logf("ledger routing: assignment %s is consolidated, redirecting to current %s (pairing %s)",
		id, current.ID, a.PairingID)
	return current, nil
}
