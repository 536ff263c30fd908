// Package serviceevent_repo provides the PostgreSQL implementation of the
// service event repository.
package serviceevent_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/serviceevent"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const eventsTable = "service_events"

// Repo implements serviceevent.Repository.
type Repo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new service event repository.
func NewRepo(pool *postgres.Pool) *Repo {
	return &Repo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ serviceevent.Repository = (*Repo)(nil)

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFrom(ctx, r.pool.Pool)
}

// Create inserts a new service event.
func (r *Repo) Create(ctx context.Context, event *serviceevent.Event) error {
	q := r.builder.
		Insert(eventsTable).
		SetMap(postgres.StructToMap(event))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert service event: %w", err)
	}
	return nil
}

// GetByID loads one service event scoped by organization.
func (r *Repo) GetByID(ctx context.Context, orgID, eventID id.ID) (*serviceevent.Event, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[serviceevent.Event]()...).
		From(eventsTable).
		Where(squirrel.Eq{"id": eventID, "org_id": orgID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	event := &serviceevent.Event{}
	if err := pgxscan.Get(ctx, r.querier(ctx), event, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("service event", eventID.String())
		}
		return nil, fmt.Errorf("get service event: %w", err)
	}
	return event, nil
}

// List returns service events, newest first.
func (r *Repo) List(ctx context.Context, orgID id.ID, f serviceevent.ListFilter) ([]serviceevent.Event, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[serviceevent.Event]()...).
		From(eventsTable).
		Where(squirrel.Eq{"org_id": orgID}).
		OrderBy("event_date DESC", "number DESC")

	if f.VehicleID != nil {
		q = q.Where(squirrel.Eq{"vehicle_id": *f.VehicleID})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var events []serviceevent.Event
	if err := pgxscan.Select(ctx, r.querier(ctx), &events, sql, args...); err != nil {
		return nil, fmt.Errorf("list service events: %w", err)
	}
	return events, nil
}

// Delete removes one service event scoped by organization.
func (r *Repo) Delete(ctx context.Context, orgID, eventID id.ID) error {
	q := r.builder.
		Delete(eventsTable).
		Where(squirrel.Eq{"id": eventID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete service event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("service event", eventID.String())
	}
	return nil
}

// CountLinkedMovements counts ledger movements referencing this event. Both
// commodity logs are checked: oil usage plus any tire movement attributed
// to the event.
func (r *Repo) CountLinkedMovements(ctx context.Context, eventID id.ID) (int64, error) {
	sql := `
		SELECT
			(SELECT COUNT(*) FROM oil_movements WHERE service_event_id = $1) +
			(SELECT COUNT(*) FROM tire_movements WHERE service_event_id = $1)
	`

	var count int64
	if err := r.querier(ctx).QueryRow(ctx, sql, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count linked movements: %w", err)
	}
	return count, nil
}
