package reminders

import (
	"context"

	"fleettrack/internal/core/id"
)

// Repository persists reminder rules and their triggerings.
type Repository interface {
	Create(ctx context.Context, rule *Rule) error

	// GetByID returns NotFound for missing or cross-org rules.
	GetByID(ctx context.Context, orgID, ruleID id.ID) (*Rule, error)

	// List returns rules for one org; activeOnly skips disabled rules.
	List(ctx context.Context, orgID id.ID, activeOnly bool) ([]Rule, error)

	Delete(ctx context.Context, orgID, ruleID id.ID) error

	// InsertTriggering records one sweep hit.
	InsertTriggering(ctx context.Context, t *Triggering) error
}
