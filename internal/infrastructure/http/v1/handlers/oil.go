package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/oil"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

const oilScale = 2

// OilHandler exposes the oil inventory: stock descriptors, manual
// adjustments, usage recording and movement history.
type OilHandler struct {
	*BaseHandler
	service *oil.Service
}

// NewOilHandler creates a new OilHandler.
func NewOilHandler(base *BaseHandler, service *oil.Service) *OilHandler {
	return &OilHandler{BaseHandler: base, service: service}
}

// CreateStock handles POST /oil/stocks
func (h *OilHandler) CreateStock(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOilStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	in.UserID = h.ActorID(c)

	stock, err := h.service.CreateStock(ctx, h.OrgID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOilStock(stock))
}

// ListStock handles GET /oil/stocks
func (h *OilHandler) ListStock(c *gin.Context) {
	ctx := c.Request.Context()

	stocks, err := h.service.ListStock(ctx, h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.OilStockResponse, len(stocks))
	for i := range stocks {
		out[i] = dto.FromOilStock(&stocks[i])
	}
	h.OK(c, gin.H{"items": out})
}

// GetStock handles GET /oil/stocks/:id
func (h *OilHandler) GetStock(c *gin.Context) {
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

	h.OK(c, dto.FromOilStock(stock))
}

// UpdateStock handles PUT /oil/stocks/:id
func (h *OilHandler) UpdateStock(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOilStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	stock, err := h.service.UpdateStock(ctx, h.OrgID(c), stockID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOilStock(stock))
}

// DeleteStock handles DELETE /oil/stocks/:id
func (h *OilHandler) DeleteStock(c *gin.Context) {
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

// AdjustStock handles POST /oil/stocks/:id/adjust
func (h *OilHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	qty, err := dto.ParseQuantity(req.Quantity, "quantity")
	if err != nil {
		h.Error(c, err)
		return
	}

	in := oil.AdjustInput{
		Type:     ledger.MovementType(req.Type),
		Quantity: qty,
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

	h.OK(c, dto.FromSnapshot(snap, oilScale))
}

// RecordUsage handles POST /oil/usage
func (h *OilHandler) RecordUsage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordOilUsageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	qty, err := dto.ParseQuantity(req.Quantity, "quantity")
	if err != nil {
		h.Error(c, err)
		return
	}

	in := oil.UsageInput{
		StockID:   id.MustParse(req.StockID),
		VehicleID: id.MustParse(req.VehicleID),
		Quantity:  qty,
		Date:      movementDate(req.Date),
		UserID:    h.ActorID(c),
	}
	if req.ServiceEventID != "" {
		eventID := id.MustParse(req.ServiceEventID)
		in.ServiceEventID = &eventID
	}
	if req.OdometerKm != nil {
		km := types.Km(*req.OdometerKm)
		in.OdometerKm = &km
	}
	if req.Notes != "" {
		in.Notes = &req.Notes
	}

	snap, err := h.service.RecordUsage(ctx, h.OrgID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSnapshot(snap, oilScale))
}

// StockMovements handles GET /oil/stocks/:id/movements
func (h *OilHandler) StockMovements(c *gin.Context) {
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

	h.OK(c, gin.H{"items": dto.FromOilMovementRows(rows)})
}

// Movements handles GET /oil/movements
func (h *OilHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := h.service.ListMovements(ctx, h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromOilMovementRows(rows)})
}

// movementDate defaults an omitted movement date to now.
func movementDate(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}
