// Package tire provides the discrete-inventory service: tire stock
// descriptors, mount/unmount tracking and movement reversal.
package tire

import (
	"context"
	"strings"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
)

// placeholder fills optional descriptive fields the operator left blank.
// Tires deliberately accept incomplete descriptors where oil rejects them.
const placeholder = "N/A"

// Stock is one tire variant (brand + model + dimension + DOT) held by an
// organization. Quantity counts whole tires and is mutated only through the
// ledger engine.
type Stock struct {
	entity.BaseEntity

	Brand     string `db:"brand" json:"brand"`
	Model     string `db:"model" json:"model"`
	Dimension string `db:"dimension" json:"dimension"`
	DOTCode   string `db:"dot_code" json:"dotCode"`
	Location  string `db:"location" json:"location,omitempty"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStock creates a tire stock descriptor with zero balance, applying the
// permissive normalization: blank fields fall back to "N/A" and the
// dimension is uppercased.
func NewStock(orgID id.ID, brand, model, dimension, dotCode, location string) *Stock {
	now := time.Now().UTC()
	return &Stock{
		BaseEntity: entity.NewBaseEntity(orgID),
		Brand:      orPlaceholder(brand),
		Model:      orPlaceholder(model),
		Dimension:  strings.ToUpper(orPlaceholder(dimension)),
		DOTCode:    orPlaceholder(dotCode),
		Location:   location,
		Quantity:   types.Zero(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return strings.TrimSpace(s)
}

// Validate implements entity.Validatable.
func (s *Stock) Validate(ctx context.Context) error {
	if s.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	return nil
}

// Label renders the display name used in movement history joins.
func (s *Stock) Label() string {
	return s.Brand + " " + s.Model + " " + s.Dimension
}

// MovementRow is a movement joined with display labels for history views.
type MovementRow struct {
	ledger.Movement

	StockLabel  string  `db:"stock_label" json:"stockLabel"`
	VehicleName *string `db:"vehicle_name" json:"vehicleName,omitempty"`
	UserEmail   *string `db:"user_email" json:"userEmail,omitempty"`
}
