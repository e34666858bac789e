package inventory_test

import (
	"errors"
	"testing"

	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to inventory.Status }{
		{inventory.StatusCreated, inventory.StatusAssigned},
		{inventory.StatusAssigned, inventory.StatusConsolidated},
		{inventory.StatusConsolidated, inventory.StatusValidated},
		{inventory.StatusConsolidated, inventory.StatusObserved},
		{inventory.StatusConsolidated, inventory.StatusAssigned},
		{inventory.StatusObserved, inventory.StatusValidated},
		{inventory.StatusObserved, inventory.StatusConsolidated},
		{inventory.StatusValidated, inventory.StatusObserved},
	}
	for _, tt := range allowed {
		if !inventory.CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	rejected := []struct{ from, to inventory.Status }{
		{inventory.StatusCreated, inventory.StatusConsolidated},
		{inventory.StatusCreated, inventory.StatusValidated},
		{inventory.StatusCreated, inventory.StatusObserved},
		{inventory.StatusAssigned, inventory.StatusCreated},
		{inventory.StatusAssigned, inventory.StatusValidated},
		{inventory.StatusAssigned, inventory.StatusObserved},
		{inventory.StatusConsolidated, inventory.StatusCreated},
		{inventory.StatusValidated, inventory.StatusCreated},
		{inventory.StatusValidated, inventory.StatusAssigned},
		{inventory.StatusValidated, inventory.StatusConsolidated},
		{inventory.StatusObserved, inventory.StatusCreated},
		{inventory.StatusObserved, inventory.StatusAssigned},
		// No self loops.
		{inventory.StatusAssigned, inventory.StatusAssigned},
		{inventory.StatusConsolidated, inventory.StatusConsolidated},
	}
	for _, tt := range rejected {
		if inventory.CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	if err := inventory.ValidateTransition(inventory.StatusCreated, inventory.StatusAssigned); err != nil {
		t.Fatalf("legal edge returned error: %v", err)
	}

	err := inventory.ValidateTransition(inventory.StatusValidated, inventory.StatusCreated)
	if err == nil {
		t.Fatal("expected error for validated -> created")
	}
	if !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var itErr *inventory.InvalidTransitionError
	if !errors.As(err, &itErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if itErr.From != inventory.StatusValidated || itErr.To != inventory.StatusCreated {
		t.Fatalf("error carries wrong edge: %s -> %s", itErr.From, itErr.To)
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	if err := inventory.ValidateTransition(inventory.StatusCreated, inventory.Status("archived")); err == nil {
		t.Fatal("expected error for unknown target status")
	}
}

func TestAllowedTransitions(t *testing.T) {
	got := inventory.AllowedTransitions(inventory.StatusConsolidated)
	want := map[inventory.Status]bool{
		inventory.StatusValidated: true,
		inventory.StatusObserved:  true,
		inventory.StatusAssigned:  true,
	}
	if len(got) != len(want) {
		t.Fatalf("AllowedTransitions(consolidated) = %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected target %s", s)
		}
	}
}

func TestConsolidationPrecondition(t *testing.T) {
	if err := inventory.ConsolidationPrecondition(inventory.StatusAssigned); err != nil {
		t.Errorf("assigned should be closable: %v", err)
	}
	// An untouched day still rolls forward.
	if err := inventory.ConsolidationPrecondition(inventory.StatusCreated); err != nil {
		t.Errorf("created should be closable: %v", err)
	}

	for _, s := range []inventory.Status{
		inventory.StatusConsolidated,
		inventory.StatusValidated,
		inventory.StatusObserved,
	} {
		if err := inventory.ConsolidationPrecondition(s); err == nil {
			t.Errorf("%s should not be closable", s)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []inventory.Status{
		inventory.StatusCreated, inventory.StatusAssigned,
		inventory.StatusConsolidated, inventory.StatusValidated, inventory.StatusObserved,
	} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if inventory.Status("deleted").IsValid() {
		t.Error("unknown status should be invalid")
	}
}
