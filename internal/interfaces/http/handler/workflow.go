package handler

import (
	"github.com/gin-gonic/gin"
	workflowapp "github.com/stockcore/backend/internal/application/workflow"
)

// WorkflowHandler exposes the workflow dispatcher so upstream systems
// (CRM, invoicing, HR) can hand business events to the automation layer
type WorkflowHandler struct {
	BaseHandler
	dispatcher *workflowapp.Dispatcher
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(dispatcher *workflowapp.Dispatcher) *WorkflowHandler {
	return &WorkflowHandler{dispatcher: dispatcher}
}

// RegisterRoutes registers workflow routes
func (h *WorkflowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	workflow := rg.Group("/workflow")
	{
		workflow.POST("/trigger", h.Trigger)
	}
}

// TriggerRequest carries an external business event
type TriggerRequest struct {
	Event   string         `json:"event" binding:"required"`
	Payload map[string]any `json:"payload"`
}

// TriggerResponse acknowledges the dispatched event
type TriggerResponse struct {
	Event      string `json:"event"`
	Dispatched bool   `json:"dispatched"`
}

// Trigger dispatches a business event to the registered automations.
// Unknown events are accepted and ignored so upstream systems can send
// their full event streams without coordination.
func (h *WorkflowHandler) Trigger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.dispatcher.Trigger(c.Request.Context(), tenantID, req.Event, req.Payload)
	h.Success(c, TriggerResponse{Event: req.Event, Dispatched: true})
}
