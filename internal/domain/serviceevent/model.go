// Package serviceevent implements dated maintenance records per vehicle.
package serviceevent

import (
	"context"
	"strings"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
)

// Event is one maintenance record: an oil change, a revision, a repair.
// Numbered SE-xxxxxx within its organization; oil usage movements may
// reference an event to tie consumption to the work performed.
type Event struct {
	entity.BaseDocument

	Number     string          `db:"number" json:"number"`
	VehicleID  id.ID           `db:"vehicle_id" json:"vehicleId"`
	EventType  string          `db:"event_type" json:"eventType"`
	EventDate  time.Time       `db:"event_date" json:"eventDate"`
	OdometerKm *types.Km       `db:"odometer_km" json:"odometerKm,omitempty"`
	Cost       *types.Quantity `db:"cost" json:"cost,omitempty"`
	Notes      *string         `db:"notes" json:"notes,omitempty"`
	UserID     *id.ID          `db:"user_id" json:"userId,omitempty"`
}

// NewEvent creates an event; the number is assigned by the service on create.
func NewEvent(orgID, vehicleID id.ID, eventType string, eventDate time.Time) *Event {
	return &Event{
		BaseDocument: entity.NewBaseDocument(orgID),
		VehicleID:    vehicleID,
		EventType:    strings.TrimSpace(eventType),
		EventDate:    eventDate,
	}
}

// Validate checks event invariants.
func (e *Event) Validate(_ context.Context) error {
	if id.IsNil(e.VehicleID) {
		return apperror.NewValidation("service event requires a vehicle").
			WithDetail("field", "vehicleId")
	}
	if strings.TrimSpace(e.EventType) == "" {
		return apperror.NewValidation("service event type is required").
			WithDetail("field", "eventType")
	}
	if e.EventDate.IsZero() {
		return apperror.NewValidation("service event date is required").
			WithDetail("field", "eventDate")
	}
	if e.OdometerKm != nil && e.OdometerKm.IsNegative() {
		return apperror.NewValidation("odometer reading cannot be negative").
			WithDetail("field", "odometerKm")
	}
	if e.Cost != nil && e.Cost.IsNegative() {
		return apperror.NewValidation("cost cannot be negative").
			WithDetail("field", "cost")
	}
	return nil
}
