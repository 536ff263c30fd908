package ledger

import (
	"time"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
)

// Movement is one immutable ledger entry. The stored quantity is always the
// unsigned magnitude; direction is reconstructed from Type at read time.
type Movement struct {
	ID      id.ID        `db:"id" json:"id"`
	OrgID   id.ID        `db:"org_id" json:"orgId"`
	StockID id.ID        `db:"stock_id" json:"stockId"`
	Type    MovementType `db:"movement_type" json:"type"`

	// Quantity is the unsigned magnitude of the movement
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Date is the business-effective date (may differ from CreatedAt)
	Date time.Time `db:"movement_date" json:"date"`

	// Optional business attribution
	VehicleID      *id.ID    `db:"vehicle_id" json:"vehicleId,omitempty"`
	ServiceEventID *id.ID    `db:"service_event_id" json:"serviceEventId,omitempty"`
	OdometerKm     *types.Km `db:"odometer_km" json:"odometerKm,omitempty"`
	DriverName     *string   `db:"driver_name" json:"driverName,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	UserID         *id.ID    `db:"user_id" json:"userId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Balance is the current on-hand quantity of one stock item.
type Balance struct {
	StockID   id.ID          `db:"id" json:"stockId"`
	OrgID     id.ID          `db:"org_id" json:"orgId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Snapshot is the engine's result: the stock state after a committed
// mutation, plus the id of the movement that caused it.
type Snapshot struct {
	StockID    id.ID          `json:"stockId"`
	Quantity   types.Quantity `json:"quantity"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	MovementID id.ID          `json:"movementId"`
}

// Attribution carries the optional business context of a movement.
type Attribution struct {
	VehicleID      *id.ID
	ServiceEventID *id.ID
	OdometerKm     *types.Km
	DriverName     *string
	Notes          *string
	UserID         *id.ID
}
