// Package reminder_repo provides the PostgreSQL implementation of the
// reminder rule repository.
package reminder_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/reminders"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const (
	rulesTable       = "reminder_rules"
	triggeringsTable = "reminder_triggerings"
)

// Repo implements reminders.Repository.
type Repo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new reminder rule repository.
func NewRepo(pool *postgres.Pool) *Repo {
	return &Repo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ reminders.Repository = (*Repo)(nil)

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFrom(ctx, r.pool.Pool)
}

// Create inserts a new rule. The condition was compiled before this point,
// so only well-formed expressions reach storage.
func (r *Repo) Create(ctx context.Context, rule *reminders.Rule) error {
	q := r.builder.
		Insert(rulesTable).
		SetMap(postgres.StructToMap(rule))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert reminder rule: %w", err)
	}
	return nil
}

// GetByID loads one rule scoped by organization.
func (r *Repo) GetByID(ctx context.Context, orgID, ruleID id.ID) (*reminders.Rule, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[reminders.Rule]()...).
		From(rulesTable).
		Where(squirrel.Eq{"id": ruleID, "org_id": orgID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rule := &reminders.Rule{}
	if err := pgxscan.Get(ctx, r.querier(ctx), rule, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("reminder rule", ruleID.String())
		}
		return nil, fmt.Errorf("get reminder rule: %w", err)
	}
	return rule, nil
}

// List returns an organization's rules, name order.
func (r *Repo) List(ctx context.Context, orgID id.ID, activeOnly bool) ([]reminders.Rule, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[reminders.Rule]()...).
		From(rulesTable).
		Where(squirrel.Eq{"org_id": orgID}).
		OrderBy("name ASC")

	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []reminders.Rule
	if err := pgxscan.Select(ctx, r.querier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("list reminder rules: %w", err)
	}
	return rules, nil
}

// Delete removes one rule scoped by organization.
func (r *Repo) Delete(ctx context.Context, orgID, ruleID id.ID) error {
	q := r.builder.
		Delete(rulesTable).
		Where(squirrel.Eq{"id": ruleID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete reminder rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("reminder rule", ruleID.String())
	}
	return nil
}

// InsertTriggering records one rule firing against one vehicle.
func (r *Repo) InsertTriggering(ctx context.Context, t *reminders.Triggering) error {
	q := r.builder.
		Insert(triggeringsTable).
		SetMap(postgres.StructToMap(t))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert reminder triggering: %w", err)
	}
	return nil
}
