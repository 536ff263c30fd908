// Package inventory_repo provides PostgreSQL implementations for the oil
// and tire inventory repositories. Both commodities share the same ledger
// shape: a stock table carrying the balance plus an append-only movement
// table, written together under a row lock on the stock.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const (
	usersTable = "sys_users"
)

// ledgerStore implements ledger.Store against one stock/movement table pair.
type ledgerStore struct {
	pool          *postgres.Pool
	builder       squirrel.StatementBuilderType
	stockTable    string
	movementTable string
}

func newLedgerStore(pool *postgres.Pool, stockTable, movementTable string) ledgerStore {
	return ledgerStore{
		pool:          pool,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		stockTable:    stockTable,
		movementTable: movementTable,
	}
}

func (s ledgerStore) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFrom(ctx, s.pool.Pool)
}

// GetBalanceForUpdate loads the stock balance with a row lock. A stock that
// does not exist under this organization is NotFound; the engine relies on
// that for cross-org opacity.
func (s ledgerStore) GetBalanceForUpdate(ctx context.Context, orgID, stockID id.ID) (ledger.Balance, error) {
	var balance ledger.Balance

	sql := fmt.Sprintf(`
		SELECT id, org_id, quantity, updated_at
		FROM %s
		WHERE id = $1 AND org_id = $2
		FOR UPDATE
	`, s.stockTable)

	if err := pgxscan.Get(ctx, s.querier(ctx), &balance, sql, stockID, orgID); err != nil {
		if pgxscan.NotFound(err) {
			return balance, apperror.NewNotFound(s.stockTable, stockID.String())
		}
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// UpdateBalance persists a new balance and updated_at on the stock row.
func (s ledgerStore) UpdateBalance(ctx context.Context, orgID, stockID id.ID, quantity types.Quantity, at time.Time) error {
	q := s.builder.
		Update(s.stockTable).
		Set("quantity", quantity).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": stockID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update balance: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(s.stockTable, stockID.String())
	}
	return nil
}

// InsertMovement appends an immutable movement row.
func (s ledgerStore) InsertMovement(ctx context.Context, m *ledger.Movement) error {
	q := s.builder.
		Insert(s.movementTable).
		SetMap(postgres.StructToMap(m))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}

	if _, err := s.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetMovement loads one movement scoped by organization.
func (s ledgerStore) GetMovement(ctx context.Context, orgID, movementID id.ID) (*ledger.Movement, error) {
	q := s.builder.
		Select(postgres.ExtractDBColumns[ledger.Movement]()...).
		From(s.movementTable).
		Where(squirrel.Eq{"id": movementID, "org_id": orgID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &ledger.Movement{}
	if err := pgxscan.Get(ctx, s.querier(ctx), m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(s.movementTable, movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// DeleteMovement removes a movement row. Only the engine's reversal path
// calls this, inside the transaction that restores the balance.
func (s ledgerStore) DeleteMovement(ctx context.Context, orgID, movementID id.ID) error {
	q := s.builder.
		Delete(s.movementTable).
		Where(squirrel.Eq{"id": movementID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete movement: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(s.movementTable, movementID.String())
	}
	return nil
}

// movementCols returns the ledger movement columns prefixed for a join.
func movementCols(alias string) []string {
	cols := postgres.ExtractDBColumns[ledger.Movement]()
	prefixed := make([]string, len(cols))
	for i, c := range cols {
		prefixed[i] = alias + "." + c
	}
	return prefixed
}

// movementHistory runs a joined movement query producing label columns.
// labelExpr must be a SQL expression over alias "s" (the stock table).
func (s ledgerStore) movementHistory(
	ctx context.Context,
	labelExpr string,
	where squirrel.Sqlizer,
	limit int,
	dest any,
) error {
	cols := append(movementCols("m"),
		labelExpr+" AS stock_label",
		"v.code AS vehicle_name",
		"u.email AS user_email",
	)

	q := s.builder.
		Select(cols...).
		From(s.movementTable+" m").
		Join(s.stockTable+" s ON s.id = m.stock_id").
		LeftJoin("cat_vehicles v ON v.id = m.vehicle_id").
		LeftJoin(usersTable+" u ON u.id = m.user_id").
		Where(where).
		OrderBy("m.movement_date DESC", "m.created_at DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build movement history: %w", err)
	}

	if err := pgxscan.Select(ctx, s.querier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("select movement history: %w", err)
	}
	return nil
}
