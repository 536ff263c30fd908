package handlers

import (
	"github.com/gin-gonic/gin"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/serviceevent"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

// ServiceEventHandler exposes the service event journal.
type ServiceEventHandler struct {
	*BaseHandler
	service *serviceevent.Service
}

// NewServiceEventHandler creates a new ServiceEventHandler.
func NewServiceEventHandler(base *BaseHandler, service *serviceevent.Service) *ServiceEventHandler {
	return &ServiceEventHandler{BaseHandler: base, service: service}
}

// Create handles POST /service-events
func (h *ServiceEventHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateServiceEventRequest
	if !h.BindJSON(c, &req) {
		return
	}

	event := serviceevent.NewEvent(h.OrgID(c), id.MustParse(req.VehicleID), req.EventType, req.EventDate)
	event.UserID = h.ActorID(c)
	if req.OdometerKm != nil {
		km := types.Km(*req.OdometerKm)
		event.OdometerKm = &km
	}
	if req.Cost != "" {
		cost, err := dto.ParseQuantity(req.Cost, "cost")
		if err != nil {
			h.Error(c, err)
			return
		}
		event.Cost = &cost
	}
	if req.Notes != "" {
		event.Notes = &req.Notes
	}

	if err := h.service.Create(ctx, event); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromServiceEvent(event))
}

// List handles GET /service-events
func (h *ServiceEventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := serviceevent.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("vehicleId"); raw != "" {
		vehicleID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", "vehicleId"))
			return
		}
		f.VehicleID = &vehicleID
	}

	events, err := h.service.List(ctx, h.OrgID(c), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromServiceEvents(events)})
}

// Get handles GET /service-events/:id
func (h *ServiceEventHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	eventID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	event, err := h.service.GetByID(ctx, h.OrgID(c), eventID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromServiceEvent(event))
}

// Delete handles DELETE /service-events/:id
func (h *ServiceEventHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	eventID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, h.OrgID(c), eventID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
