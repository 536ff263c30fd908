package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/tire"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

const (
	tireScale             = 0
	defaultMovementsLimit = 50
	maxMovementsLimit     = 100
)

// TireHandler exposes the tire inventory: stock descriptors, manual
// adjustments, mount/unmount traffic and movement history with reversal.
type TireHandler struct {
	*BaseHandler
	service *tire.Service
}

// NewTireHandler creates a new TireHandler.
func NewTireHandler(base *BaseHandler, service *tire.Service) *TireHandler {
	return &TireHandler{BaseHandler: base, service: service}
}

// CreateStock handles POST /tire/stocks
func (h *TireHandler) CreateStock(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTireStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := req.ToInput()
	in.UserID = h.ActorID(c)

	stock, err := h.service.CreateStock(ctx, h.OrgID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromTireStock(stock))
}

// ListStock handles GET /tire/stocks
func (h *TireHandler) ListStock(c *gin.Context) {
	ctx := c.Request.Context()

	stocks, err := h.service.ListStock(ctx, h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.TireStockResponse, len(stocks))
	for i := range stocks {
		out[i] = dto.FromTireStock(&stocks[i])
	}
	h.OK(c, gin.H{"items": out})
}

// GetStock handles GET /tire/stocks/:id
func (h *TireHandler) GetStock(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	stock, err := h.service.GetStock(ctx, h.OrgID(c), stockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTireStock(stock))
}

// DeleteStock handles DELETE /tire/stocks/:id
func (h *TireHandler) DeleteStock(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStock(ctx, h.OrgID(c), stockID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustStock handles POST /tire/stocks/:id/adjust
func (h *TireHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustTireStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := tire.AdjustInput{
		Type:     ledger.MovementType(req.Type),
		Quantity: types.NewQuantityFromInt(req.Quantity),
		Date:     movementDate(req.Date),
		UserID:   h.ActorID(c),
	}
	if req.Notes != "" {
		in.Notes = &req.Notes
	}

	snap, err := h.service.AdjustStock(ctx, h.OrgID(c), stockID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSnapshot(snap, tireScale))
}

// Mount handles POST /tire/mount
func (h *TireHandler) Mount(c *gin.Context) {
	h.applyMount(c, h.service.MountTires)
}

// Unmount handles POST /tire/unmount
func (h *TireHandler) Unmount(c *gin.Context) {
	h.applyMount(c, h.service.UnmountTires)
}

func (h *TireHandler) applyMount(
	c *gin.Context,
	apply func(ctx context.Context, orgID id.ID, in tire.MountInput) (ledger.Snapshot, error),
) {
	ctx := c.Request.Context()

	var req dto.TireMountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := tire.MountInput{
		VehicleID: id.MustParse(req.VehicleID),
		StockID:   id.MustParse(req.StockID),
		Quantity:  types.NewQuantityFromInt(req.Quantity),
		Date:      movementDate(req.Date),
		UserID:    h.ActorID(c),
	}
	if req.OdometerKm != nil {
		km := types.Km(*req.OdometerKm)
		in.OdometerKm = &km
	}
	if req.DriverName != "" {
		in.DriverName = &req.DriverName
	}
	if req.Notes != "" {
		in.Notes = &req.Notes
	}

	snap, err := apply(ctx, h.OrgID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSnapshot(snap, tireScale))
}

// StockMovements handles GET /tire/stocks/:id/movements
func (h *TireHandler) StockMovements(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	rows, err := h.service.ListStockMovements(ctx, h.OrgID(c), stockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromTireMovementRows(rows)})
}

// Movements handles GET /tire/movements
func (h *TireHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", defaultMovementsLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxMovementsLimit {
		limit = maxMovementsLimit
	}

	rows, err := h.service.ListMovements(ctx, h.OrgID(c), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromTireMovementRows(rows)})
}

// DeleteMovement handles DELETE /tire/movements/:id. It reverses a
// mistaken entry by restoring the balance and removing the movement.
func (h *TireHandler) DeleteMovement(c *gin.Context) {
	ctx := c.Request.Context()

	movementID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	snap, err := h.service.DeleteMovement(ctx, h.OrgID(c), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSnapshot(snap, tireScale))
}
