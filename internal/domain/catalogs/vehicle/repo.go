package vehicle

import (
	"context"

	"fleettrack/internal/core/id"
	"fleettrack/internal/domain"
	"fleettrack/internal/domain/status"
)

// Repository defines the interface for vehicle storage plus the odometer log.
type Repository interface {
	domain.CatalogRepository[*Vehicle]

	// UpdateStatus writes only the denormalized status column
	UpdateStatus(ctx context.Context, vehicleID id.ID, level status.Level) error

	// InsertReading appends one odometer record
	InsertReading(ctx context.Context, reading *OdometerReading) error

	// LastReading returns the most recent odometer record, or nil when the
	// log is empty
	LastReading(ctx context.Context, orgID, vehicleID id.ID) (*OdometerReading, error)

	// ListReadings returns the odometer log, most recent first
	ListReadings(ctx context.Context, orgID, vehicleID id.ID, limit int) ([]OdometerReading, error)

	// ListByOrg returns all live vehicles of one organization. Used by the
	// worker sweeps, which run outside a request context.
	ListByOrg(ctx context.Context, orgID id.ID) ([]*Vehicle, error)
}
