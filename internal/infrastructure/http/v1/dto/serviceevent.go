package dto

import (
	"time"

	"fleettrack/internal/domain/serviceevent"
)

// CreateServiceEventRequest records one dated maintenance event.
type CreateServiceEventRequest struct {
	VehicleID  string    `json:"vehicleId" binding:"required,uuid"`
	EventType  string    `json:"eventType" binding:"required"`
	EventDate  time.Time `json:"eventDate" binding:"required"`
	OdometerKm *int64    `json:"odometerKm"`
	Cost       string    `json:"cost"`
	Notes      string    `json:"notes"`
}

// ServiceEventResponse is the API representation of a service event.
type ServiceEventResponse struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	VehicleID  string    `json:"vehicleId"`
	EventType  string    `json:"eventType"`
	EventDate  time.Time `json:"eventDate"`
	OdometerKm *int64    `json:"odometerKm,omitempty"`
	Cost       *string   `json:"cost,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	UserID     *string   `json:"userId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromServiceEvent maps the entity to its response DTO.
func FromServiceEvent(e *serviceevent.Event) ServiceEventResponse {
	resp := ServiceEventResponse{
		ID:        e.ID.String(),
		Number:    e.Number,
		VehicleID: e.VehicleID.String(),
		EventType: e.EventType,
		EventDate: e.EventDate,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
	if e.OdometerKm != nil {
		km := e.OdometerKm.Int64()
		resp.OdometerKm = &km
	}
	if e.Cost != nil {
		cost := e.Cost.StringFixed(2)
		resp.Cost = &cost
	}
	if e.UserID != nil {
		uid := e.UserID.String()
		resp.UserID = &uid
	}
	return resp
}

// FromServiceEvents maps a list.
func FromServiceEvents(events []serviceevent.Event) []ServiceEventResponse {
	out := make([]ServiceEventResponse, len(events))
	for i := range events {
		out[i] = FromServiceEvent(&events[i])
	}
	return out
}
