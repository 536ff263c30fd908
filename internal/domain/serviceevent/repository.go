package serviceevent

import (
	"context"

	"fleettrack/internal/core/id"
)

// ListFilter narrows event listings.
type ListFilter struct {
	VehicleID *id.ID
	Limit     int
	Offset    int
}

// Repository persists service events.
type Repository interface {
	Create(ctx context.Context, event *Event) error

	// GetByID returns NotFound for missing or cross-org events.
	GetByID(ctx context.Context, orgID, eventID id.ID) (*Event, error)

	// List returns events newest-first by event date.
	List(ctx context.Context, orgID id.ID, f ListFilter) ([]Event, error)

	Delete(ctx context.Context, orgID, eventID id.ID) error

	// CountLinkedMovements reports how many ledger movements reference
	// the event. Events with consumption on record cannot be deleted.
	CountLinkedMovements(ctx context.Context, eventID id.ID) (int64, error)
}
