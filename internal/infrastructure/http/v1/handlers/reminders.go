package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"fleettrack/internal/domain/reminders"
	"fleettrack/internal/infrastructure/http/v1/dto"
)

// ReminderHandler manages reminder rules and on-demand evaluation.
type ReminderHandler struct {
	*BaseHandler
	service *reminders.Service
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(base *BaseHandler, service *reminders.Service) *ReminderHandler {
	return &ReminderHandler{BaseHandler: base, service: service}
}

// Create handles POST /reminders
func (h *ReminderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateReminderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule := reminders.NewRule(h.OrgID(c), req.Name, req.Condition)
	if err := h.service.Create(ctx, rule); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromReminderRule(rule))
}

// List handles GET /reminders
func (h *ReminderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	rules, err := h.service.List(ctx, h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromReminderRules(rules)})
}

// Get handles GET /reminders/:id
func (h *ReminderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	rule, err := h.service.GetByID(ctx, h.OrgID(c), ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReminderRule(rule))
}

// Delete handles DELETE /reminders/:id
func (h *ReminderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, h.OrgID(c), ruleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Evaluate handles POST /reminders/:id/evaluate. It runs the rule's
// condition against all vehicles. With ?record=true each firing is also
// persisted as a triggering.
func (h *ReminderHandler) Evaluate(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	record, _ := strconv.ParseBool(c.Query("record"))
	firings, err := h.service.Evaluate(ctx, h.OrgID(c), ruleID, record)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromFirings(firings), "count": len(firings)})
}
