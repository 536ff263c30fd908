package oil

import (
	"context"

	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/inventory/ledger"
)

// Repository persists oil stock descriptors and serves the ledger read
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

	// ListStock returns all stock for an organization, sorted type then brand
	ListStock(ctx context.Context, orgID id.ID) ([]Stock, error)

	// ListStockMovements returns one stock's movements, most recent first,
	// joined with vehicle labels
	ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]MovementRow, error)

	// ListVehicleUsage returns a vehicle's UTILIZARE movements, most recent first
	ListVehicleUsage(ctx context.Context, orgID, vehicleID id.ID) ([]MovementRow, error)

	// ListMovements returns the organization-wide movement history, most recent first
	ListMovements(ctx context.Context, orgID id.ID) ([]MovementRow, error)
}
