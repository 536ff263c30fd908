package dto

import (
	"time"

	"fleettrack/internal/domain/reminders"
)

// CreateReminderRequest defines a rule with a CEL condition over vehicle
// facts, e.g. "days_to_insurance < 30 || status != 'ok'".
type CreateReminderRequest struct {
	Name      string `json:"name" binding:"required"`
	Condition string `json:"condition" binding:"required"`
}

// ReminderRuleResponse is the API representation of a reminder rule.
type ReminderRuleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromReminderRule maps the entity to its response DTO.
func FromReminderRule(r *reminders.Rule) ReminderRuleResponse {
	return ReminderRuleResponse{
		ID:        r.ID.String(),
		Name:      r.Name,
		Condition: r.Condition,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromReminderRules maps a list.
func FromReminderRules(rules []reminders.Rule) []ReminderRuleResponse {
	out := make([]ReminderRuleResponse, len(rules))
	for i := range rules {
		out[i] = FromReminderRule(&rules[i])
	}
	return out
}

// ReminderFiringResponse is one vehicle a rule fires for.
type ReminderFiringResponse struct {
	VehicleID string `json:"vehicleId"`
	Plate     string `json:"plate"`
}

// FromFirings maps an evaluation result.
func FromFirings(firings []reminders.Firing) []ReminderFiringResponse {
	out := make([]ReminderFiringResponse, len(firings))
	for i, f := range firings {
		out[i] = ReminderFiringResponse{
			VehicleID: f.VehicleID.String(),
			Plate:     f.Plate,
		}
	}
	return out
}
