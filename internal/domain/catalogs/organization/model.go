// Package organization provides the Organization catalog: the tenant scope
// every other entity hangs off.
package organization

import (
	"context"

	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
)

// Organization is one tenant: a trucking or car-service operation.
// Organizations own themselves, so OrgID equals ID.
type Organization struct {
	entity.Catalog

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the fiscal identification code
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Active gates request scoping; inactive organizations reject requests
	Active bool `db:"active" json:"active"`
}

// NewOrganization creates a new Organization with required fields.
func NewOrganization(code, name string) *Organization {
	o := &Organization{
		Catalog: entity.NewCatalog(id.Nil(), code, name),
		Active:  true,
	}
	o.OrgID = o.ID
	return o
}

// Validate implements entity.Validatable interface.
func (o *Organization) Validate(ctx context.Context) error {
	return o.Catalog.Validate(ctx)
}
