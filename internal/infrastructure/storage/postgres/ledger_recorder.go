package postgres

import (
	"context"
	"fmt"

	"fleettrack/internal/domain/inventory/ledger"
)

// LedgerRecorder implements ledger.Recorder on top of the audit trail and
// the transactional outbox. Both writes join the caller's transaction, so
// a rolled-back movement leaves no audit entry and no outbox message.
type LedgerRecorder struct {
	audit  *AuditService
	outbox *OutboxPublisher
}

var _ ledger.Recorder = (*LedgerRecorder)(nil)

// NewLedgerRecorder creates a recorder over the audit and outbox services.
func NewLedgerRecorder(audit *AuditService, outbox *OutboxPublisher) *LedgerRecorder {
	return &LedgerRecorder{audit: audit, outbox: outbox}
}

// Record writes one audit entry and one outbox message for a ledger event.
func (r *LedgerRecorder) Record(ctx context.Context, event ledger.RecordedEvent) error {
	if err := r.audit.LogChange(ctx, event.EntityType, event.EntityID, AuditAction(event.Action), event.Payload); err != nil {
		return fmt.Errorf("audit ledger event: %w", err)
	}

	return r.outbox.Publish(ctx, DomainEvent{
		AggregateType: event.EntityType,
		AggregateID:   event.EntityID,
		EventType:     eventTypeFor(event),
		Payload:       event.Payload,
	})
}

func eventTypeFor(event ledger.RecordedEvent) string {
	switch event.Action {
	case "movement":
		return "MovementApplied"
	case "reverse":
		return "MovementReversed"
	case "create":
		return "StockCreated"
	case "delete":
		return "StockDeleted"
	default:
		return event.Action
	}
}
