package handlers

import (
	"github.com/gin-gonic/gin"

	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/inventory/oil"
	"fleettrack/internal/domain/inventory/tire"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

// VehicleHandler handles vehicle CRUD plus the vehicle-rooted views:
// odometer log, mounted tires and oil usage.
type VehicleHandler struct {
	*CatalogHandler[*vehicle.Vehicle, dto.CreateVehicleRequest, dto.UpdateVehicleRequest]
	service *vehicle.Service
	oil     *oil.Service
	tires   *tire.Service
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(
	base *BaseHandler,
	service *vehicle.Service,
	oilService *oil.Service,
	tireService *tire.Service,
) *VehicleHandler {
	config := CatalogHandlerConfig[*vehicle.Vehicle, dto.CreateVehicleRequest, dto.UpdateVehicleRequest]{
		Service:    service.CatalogService,
		EntityName: "vehicle",

		MapCreateDTO: func(c *gin.Context, req dto.CreateVehicleRequest) (*vehicle.Vehicle, error) {
			return req.ToEntity(base.OrgID(c)), nil
		},

		MapUpdateDTO: func(req dto.UpdateVehicleRequest, existing *vehicle.Vehicle) *vehicle.Vehicle {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *vehicle.Vehicle) any {
			return dto.FromVehicle(entity)
		},
	}

	return &VehicleHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
		oil:            oilService,
		tires:          tireService,
	}
}

// RecordOdometer handles POST /vehicles/:id/odometer
func (h *VehicleHandler) RecordOdometer(c *gin.Context) {
	ctx := c.Request.Context()

	vehicleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordOdometerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := vehicle.RecordReadingInput{
		Km:     types.Km(req.Km),
		UserID: h.ActorID(c),
	}
	if req.ReadAt != nil {
		in.ReadAt = *req.ReadAt
	}
	if req.Notes != "" {
		in.Notes = &req.Notes
	}

	reading, err := h.service.RecordReading(ctx, h.OrgID(c), vehicleID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOdometerReading(*reading))
}

// ListOdometer handles GET /vehicles/:id/odometer
func (h *VehicleHandler) ListOdometer(c *gin.Context) {
	ctx := c.Request.Context()

	vehicleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	readings, err := h.service.ListReadings(ctx, h.OrgID(c), vehicleID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.OdometerReadingResponse, len(readings))
	for i, r := range readings {
		out[i] = dto.FromOdometerReading(r)
	}
	h.OK(c, gin.H{"items": out})
}

// MountedTires handles GET /vehicles/:id/mounted-tires
func (h *VehicleHandler) MountedTires(c *gin.Context) {
	ctx := c.Request.Context()

	vehicleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	mounted, err := h.tires.GetMountedTires(ctx, h.OrgID(c), vehicleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromMounted(mounted)})
}

// OilUsage handles GET /vehicles/:id/oil-usage
func (h *VehicleHandler) OilUsage(c *gin.Context) {
	ctx := c.Request.Context()

	vehicleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	rows, err := h.oil.ListVehicleUsage(ctx, h.OrgID(c), vehicleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromOilMovementRows(rows)})
}
