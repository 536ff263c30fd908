package organization

import (
	"fleettrack/internal/domain"
)

// Repository defines the interface for organization storage.
type Repository interface {
	domain.CatalogRepository[*Organization]
}
