// Package reminders implements per-organization alert rules evaluated
// against the vehicle fleet. A rule is a CEL boolean expression over a
// fixed vehicle fact set; the worker sweeps active rules periodically.
package reminders

import (
	"context"
	"strings"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
)

// Rule is one reminder definition, e.g.
// "days_to_insurance < 15 || km_to_revision < 500".
type Rule struct {
	entity.BaseEntity

	Name      string    `db:"name" json:"name"`
	Condition string    `db:"condition" json:"condition"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewRule creates an active rule. The condition is compiled by the
// service on create; a rule that does not compile is never persisted.
func NewRule(orgID id.ID, name, condition string) *Rule {
	now := time.Now().UTC()
	return &Rule{
		BaseEntity: entity.NewBaseEntity(orgID),
		Name:       strings.TrimSpace(name),
		Condition:  strings.TrimSpace(condition),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks structural invariants; condition compilation is the
// service's job.
func (r *Rule) Validate(_ context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("rule name is required").WithDetail("field", "name")
	}
	if r.Condition == "" {
		return apperror.NewValidation("rule condition is required").WithDetail("field", "condition")
	}
	return nil
}

// Triggering records one rule firing for one vehicle during a sweep.
type Triggering struct {
	ID        id.ID     `db:"id" json:"id"`
	OrgID     id.ID     `db:"org_id" json:"orgId"`
	RuleID    id.ID     `db:"rule_id" json:"ruleId"`
	VehicleID id.ID     `db:"vehicle_id" json:"vehicleId"`
	FiredAt   time.Time `db:"fired_at" json:"firedAt"`
}

// Firing is one evaluation hit returned to the caller.
type Firing struct {
	VehicleID id.ID  `json:"vehicleId"`
	Plate     string `json:"plate"`
}
