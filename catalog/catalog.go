/*
Package catalog is the seam to the store/catalog collaborator.

PURPOSE:
  When an assignment is created, the catalog supplies the set of tank types
  and inventory items the store carries, plus their current default prices.
  The inventory engine consults it exactly once per assignment: prices are
  snapshotted onto the new lines and never recomputed afterwards.

IMPLEMENTATIONS:
  - store/sqlite: catalog tables alongside the inventory schema
  - tests: small fixture providers
*/
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// TankType is a gas cylinder format a store carries (e.g. 10kg, 45kg).
type TankType struct {
	ID            string
	Name          string
	Weight        string // human label, e.g. "10kg"
	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal
}

// Item is an auxiliary inventory item (valves, hoses, regulators).
type Item struct {
	ID            string
	Name          string
	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal
}

// Provider supplies the catalog for a store/operator pairing at
// assignment-creation time.
type Provider interface {
	// TankTypes returns the tank formats the pairing's store carries.
	TankTypes(ctx context.Context, pairing string) ([]TankType, error)

	// Items returns the auxiliary items the pairing's store carries.
	Items(ctx context.Context, pairing string) ([]Item, error)
}

// Static is a fixed in-memory Provider, used by tests and demos.
type Static struct {
	Tanks     []TankType
	Inventory []Item
}

func (s *Static) TankTypes(ctx context.Context, pairing string) ([]TankType, error) {
	return append([]TankType(nil), s.Tanks...), nil
}

func (s *Static) Items(ctx context.Context, pairing string) ([]Item, error) {
	return append([]Item(nil), s.Inventory...), nil
}
