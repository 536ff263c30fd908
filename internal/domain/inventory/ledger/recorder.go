package ledger

import (
	"context"

	"fleettrack/internal/core/id"
)

// RecordedEvent describes one committed inventory mutation for the audit
// trail and the transactional outbox.
type RecordedEvent struct {
	// EntityType names the mutated aggregate, e.g. "oil_stock"
	EntityType string

	// EntityID is the stock (or movement) the mutation touched
	EntityID id.ID

	// Action is the business operation: "create", "delete", "movement",
	// "reverse"
	Action string

	// Payload carries the operation facts (quantities, attribution)
	Payload map[string]any
}

// Recorder persists side artifacts of a ledger mutation. Implementations
// must join the ambient transaction so a rolled-back mutation records
// nothing.
type Recorder interface {
	Record(ctx context.Context, event RecordedEvent) error
}

// NopRecorder discards events. Used in tests and as the default when no
// audit sink is wired.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, RecordedEvent) error { return nil }
