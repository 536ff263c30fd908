package tire

import (
	"context"

	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/inventory/ledger"
)

// Repository persists tire stock descriptors and serves the ledger read
// models. The embedded ledger.Store contract backs the engine's write path
// against the same tables.
type Repository interface {
	ledger.Store

	// CreateStock inserts a new stock descriptor
	CreateStock(ctx context.Context, stock *Stock) error

	// GetStock loads one stock scoped by organization
	GetStock(ctx context.Context, orgID, stockID id.ID) (*Stock, error)

	// UpdateStock persists descriptive fields (never the balance)
	UpdateStock(ctx context.Context, stock *Stock) error

	// DeleteStock removes the stock row
	DeleteStock(ctx context.Context, orgID, stockID id.ID) error

	// ListStock returns all stock for an organization, sorted brand then model
	ListStock(ctx context.Context, orgID id.ID) ([]Stock, error)

	// ListStockMovements returns one stock's movements, most recent first,
	// joined with vehicle and user labels
	ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]MovementRow, error)

	// ListVehicleMovements returns a vehicle's tire movements, most recent first
	ListVehicleMovements(ctx context.Context, orgID, vehicleID id.ID) ([]ledger.Movement, error)

	// ListMovements returns the organization-wide feed, most recent first,
	// at most limit rows
	ListMovements(ctx context.Context, orgID id.ID, limit int) ([]MovementRow, error)
}
