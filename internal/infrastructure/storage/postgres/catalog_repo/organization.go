package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/domain/catalogs/organization"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const organizationTable = "cat_organizations"

// OrganizationRepo implements organization.Repository.
//
// Organizations are the scope everything else is filtered by, so this
// repository is the one catalog repo that queries without an org condition.
type OrganizationRepo struct {
	*BaseCatalogRepo[*organization.Organization]
}

var _ organization.Repository = (*OrganizationRepo)(nil)

// NewOrganizationRepo creates a new organization repository.
func NewOrganizationRepo(pool *postgres.Pool) *OrganizationRepo {
	return &OrganizationRepo{
		BaseCatalogRepo: NewUnscopedCatalogRepo[*organization.Organization](
			pool,
			organizationTable,
			postgres.ExtractDBColumns[organization.Organization](),
			func() *organization.Organization { return &organization.Organization{} },
		),
	}
}

// GetActiveByCode resolves an organization by code for request scoping.
// Inactive and soft-deleted organizations are treated as absent.
func (r *OrganizationRepo) GetActiveByCode(ctx context.Context, code string) (*organization.Organization, error) {
	org := &organization.Organization{}

	q := r.Builder().
		Select(r.selectCols...).
		From(organizationTable).
		Where(squirrel.Eq{
			"code":          strings.TrimSpace(code),
			"active":        true,
			"deletion_mark": false,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), org, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(organizationTable, code)
		}
		return nil, fmt.Errorf("get active organization: %w", err)
	}

	return org, nil
}

// ListActive returns every active organization. Background sweeps use it
// to iterate scopes outside of any request.
func (r *OrganizationRepo) ListActive(ctx context.Context) ([]*organization.Organization, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(organizationTable).
		Where(squirrel.Eq{"active": true, "deletion_mark": false}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orgs []*organization.Organization
	if err := pgxscan.Select(ctx, r.querier(ctx), &orgs, sql, args...); err != nil {
		return nil, fmt.Errorf("list active organizations: %w", err)
	}
	return orgs, nil
}
