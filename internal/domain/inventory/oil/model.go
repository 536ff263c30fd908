// Package oil provides the liquid-inventory service: oil stock descriptors
// and their ledger movements (INTRARE / IESIRE / UTILIZARE).
package oil

import (
	"context"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
)

// Stock is one oil variant (type + brand) held by an organization.
// Quantity is mutated only through the ledger engine.
type Stock struct {
	entity.BaseEntity

	OilType  string `db:"oil_type" json:"oilType"`
	Brand    string `db:"brand" json:"brand"`
	Location string `db:"location" json:"location,omitempty"`

	// Quantity is the current balance in liters, two decimal places
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStock creates an oil stock descriptor with zero balance.
func NewStock(orgID id.ID, oilType, brand, location string) *Stock {
	now := time.Now().UTC()
	return &Stock{
		BaseEntity: entity.NewBaseEntity(orgID),
		OilType:    oilType,
		Brand:      brand,
		Location:   location,
		Quantity:   types.Zero(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements entity.Validatable. Oil descriptors are validated
// strictly, unlike tires.
func (s *Stock) Validate(ctx context.Context) error {
	if s.OilType == "" {
		return apperror.NewValidation("oil type is required").WithDetail("field", "oilType")
	}
	if s.Brand == "" {
		return apperror.NewValidation("brand is required").WithDetail("field", "brand")
	}
	if s.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	return nil
}

// Label renders the display name used in movement history joins.
func (s *Stock) Label() string {
	return s.OilType + " " + s.Brand
}

// MovementRow is a movement joined with display labels for history views.
type MovementRow struct {
	ledger.Movement

	// StockLabel identifies the stock in tenant-wide views ("5W-30 Castrol")
	StockLabel string `db:"stock_label" json:"stockLabel"`

	// VehicleName is the attributed vehicle's plate, when any
	VehicleName *string `db:"vehicle_name" json:"vehicleName,omitempty"`

	// UserEmail is the acting user, when recorded
	UserEmail *string `db:"user_email" json:"userEmail,omitempty"`
}
