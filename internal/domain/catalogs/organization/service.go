package organization

import (
	"context"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/domain"
)

// Service provides business logic for the Organization catalog.
type Service struct {
	*domain.CatalogService[*Organization]
	repo Repository
}

// NewService creates a new Organization service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Organization]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "organization",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// Resolve loads an active organization for request scoping. Inactive and
// soft-deleted organizations resolve to NotFound.
func (s *Service) Resolve(ctx context.Context, orgID id.ID) (*Organization, error) {
	org, err := s.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.Active || org.DeletionMark {
		return nil, apperror.NewNotFound("organization", orgID.String())
	}
	return org, nil
}
