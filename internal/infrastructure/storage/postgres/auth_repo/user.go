// Package auth_repo provides the PostgreSQL implementation of the user
// repository. Users carry login identity only; every request acts with full
// access inside its organization.
package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/auth"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const usersTable = "sys_users"

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(pool *postgres.Pool) *UserRepo {
	return &UserRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFrom(ctx, r.pool.Pool)
}

// Create inserts a new user. Email is unique across all organizations.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.builder.
		Insert(usersTable).
		SetMap(postgres.StructToMap(user))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("user with this email already exists").
				WithDetail("email", user.Email).
				WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, label string) (*auth.User, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[auth.User]()...).
		From(usersTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user := &auth.User{}
	if err := pgxscan.Get(ctx, r.querier(ctx), user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", label)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update modifies a user with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)
	delete(data, "id")
	delete(data, "org_id")
	delete(data, "version")

	q := r.builder.
		Update(usersTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": user.ID, "version": user.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}
	return nil
}

// List returns an organization's users plus the total count.
func (r *UserRepo) List(ctx context.Context, orgID id.ID, filter auth.UserFilter) ([]auth.User, int, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[auth.User]()...).
		From(usersTable).
		Where(squirrel.Eq{"org_id": orgID})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"full_name": pattern},
		})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q = q.OrderBy("email ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, r.querier(ctx), &users, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Exists checks if a user with the given email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	q := r.builder.
		Select("1").
		From(usersTable).
		Where(squirrel.Eq{"email": email}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return true, nil
}
