// Package ledger implements the shared stock ledger: a balance row plus an
// append-only movement log, mutated together in one transaction with a
// non-negative balance invariant.
package ledger

import (
	"fmt"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/types"
)

// MovementType tags one ledger entry. The direction of a movement is implied
// by its type and never stored signed, so the type-to-direction mapping below is
// part of the stored contract and must not change retroactively.
type MovementType string

const (
	TypeIntrare   MovementType = "INTRARE"   // inbound: restock
	TypeIesire    MovementType = "IESIRE"    // outbound: write-off, sale
	TypeUtilizare MovementType = "UTILIZARE" // outbound: consumed during a service event (oil)
	TypeMontare   MovementType = "MONTARE"   // outbound: mounted on a vehicle (tires)
	TypeDemontare MovementType = "DEMONTARE" // inbound: removed from a vehicle (tires)
)

// Direction is the sign a movement type applies to the balance.
type Direction int

const (
	DirectionIn  Direction = 1
	DirectionOut Direction = -1
)

// Apply returns balance + direction*magnitude.
func (d Direction) Apply(balance, magnitude types.Quantity) types.Quantity {
	if d == DirectionOut {
		return balance.Sub(magnitude)
	}
	return balance.Add(magnitude)
}

// Commodity describes one ledger-managed inventory kind: its movement type
// set with directions, its numeric precision, and which types may be
// reversed after the fact.
type Commodity struct {
	// Name appears in error details and audit entries
	Name string

	// Unit is the display unit (informational)
	Unit string

	// Scale is the number of fractional digits a magnitude may carry
	Scale int32

	// Directions is the closed type-to-sign table
	Directions map[MovementType]Direction

	// Reversible marks types whose movements may be deleted, undoing
	// their balance effect
	Reversible map[MovementType]bool
}

// Oil returns the liquid-inventory commodity: fractional liters,
// two decimal places, consumption attributed to vehicles via UTILIZARE.
func Oil() Commodity {
	return Commodity{
		Name:  "oil",
		Unit:  "l",
		Scale: 2,
		Directions: map[MovementType]Direction{
			TypeIntrare:   DirectionIn,
			TypeIesire:    DirectionOut,
			TypeUtilizare: DirectionOut,
		},
	}
}

// Tire returns the discrete-inventory commodity: whole units, mount and
// unmount movements, both reversible.
func Tire() Commodity {
	return Commodity{
		Name:  "tire",
		Unit:  "pcs",
		Scale: 0,
		Directions: map[MovementType]Direction{
			TypeIntrare:   DirectionIn,
			TypeIesire:    DirectionOut,
			TypeMontare:   DirectionOut,
			TypeDemontare: DirectionIn,
		},
		Reversible: map[MovementType]bool{
			TypeMontare:   true,
			TypeDemontare: true,
		},
	}
}

// Direction resolves the sign for a movement type, rejecting types outside
// the commodity's closed set.
func (c Commodity) Direction(t MovementType) (Direction, error) {
	d, ok := c.Directions[t]
	if !ok {
		return 0, apperror.NewValidation(
			fmt.Sprintf("movement type %q is not valid for %s", t, c.Name)).
			WithDetail("type", string(t)).
			WithDetail("commodity", c.Name)
	}
	return d, nil
}

// IsReversible reports whether movements of type t may be deleted.
func (c Commodity) IsReversible(t MovementType) bool {
	return c.Reversible[t]
}

// ValidateMagnitude checks a movement magnitude: strictly positive, no more
// fractional digits than the commodity's scale.
func (c Commodity) ValidateMagnitude(q types.Quantity) error {
	if !q.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", q.String())
	}
	if !q.Equal(q.Round(c.Scale)) {
		return apperror.NewValidation(
			fmt.Sprintf("%s quantity supports at most %d decimal places", c.Name, c.Scale)).
			WithDetail("quantity", q.String())
	}
	return nil
}

// Format renders a quantity at the commodity's scale, e.g. "15.00" for oil.
func (c Commodity) Format(q types.Quantity) string {
	return q.StringFixed(c.Scale)
}
