package dto

import (
	"fleettrack/internal/domain/catalogs/organization"
)

// CreateOrganizationRequest is the DTO for creating an organization.
type CreateOrganizationRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	FullName string `json:"fullName"`
	TaxID    string `json:"taxId"`
}

func (r CreateOrganizationRequest) ToEntity() *organization.Organization {
	org := organization.NewOrganization(r.Code, r.Name)
	if r.FullName != "" {
		org.FullName = &r.FullName
	}
	if r.TaxID != "" {
		org.TaxID = &r.TaxID
	}
	return org
}

// UpdateOrganizationRequest is the DTO for updating an organization.
type UpdateOrganizationRequest struct {
	Version  int    `json:"version" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	FullName string `json:"fullName"`
	TaxID    string `json:"taxId"`
	Active   *bool  `json:"active"`
}

func (r UpdateOrganizationRequest) ApplyTo(org *organization.Organization) {
	org.Code = r.Code
	org.Name = r.Name
	if r.FullName != "" {
		org.FullName = &r.FullName
	} else {
		org.FullName = nil
	}
	if r.TaxID != "" {
		org.TaxID = &r.TaxID
	} else {
		org.TaxID = nil
	}
	if r.Active != nil {
		org.Active = *r.Active
	}
	org.SetVersion(r.Version)
}

// OrganizationResponse is the API representation of an organization.
type OrganizationResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	FullName     *string   `json:"fullName,omitempty"`
	TaxID        *string   `json:"taxId,omitempty"`
	Active       bool      `json:"active"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromOrganization maps the entity to its response DTO.
func FromOrganization(org *organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           org.ID.String(),
		Code:         org.Code,
		Name:         org.Name,
		FullName:     org.FullName,
		TaxID:        org.TaxID,
		Active:       org.Active,
		DeletionMark: org.DeletionMark,
		Version:      org.Version,
	}
}
