package handlers

import (
	"github.com/gin-gonic/gin"

	"fleettrack/internal/domain/catalogs/organization"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

// OrganizationHandler handles HTTP requests for Organizations.
type OrganizationHandler = CatalogHandler[
	*organization.Organization,
	dto.CreateOrganizationRequest,
	dto.UpdateOrganizationRequest,
]

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(base *BaseHandler, service *organization.Service) *OrganizationHandler {
	config := CatalogHandlerConfig[
		*organization.Organization,
		dto.CreateOrganizationRequest,
		dto.UpdateOrganizationRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "organization",

		MapCreateDTO: func(c *gin.Context, req dto.CreateOrganizationRequest) (*organization.Organization, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateOrganizationRequest, existing *organization.Organization) *organization.Organization {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *organization.Organization) any {
			return dto.FromOrganization(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
