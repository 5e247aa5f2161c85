package handler

import (
	"github.com/gin-gonic/gin"
	stockapp "github.com/stockcore/backend/internal/application/stock"
)

// StockMovementHandler handles stock movement API endpoints
type StockMovementHandler struct {
	BaseHandler
	movementService *stockapp.MovementService
}

// NewStockMovementHandler creates a new StockMovementHandler
func NewStockMovementHandler(movementService *stockapp.MovementService) *StockMovementHandler {
	return &StockMovementHandler{movementService: movementService}
}

// RegisterRoutes registers movement routes
func (h *StockMovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/movements")
	{
		movements.POST("", h.Create)
		movements.GET("", h.List)
		movements.GET("/:id", h.GetByID)
		movements.POST("/:id/validate", h.Validate)
	}
}

// Create creates a draft movement
func (h *StockMovementHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	var req stockapp.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.movementService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// List lists movements
func (h *StockMovementHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.movementService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID retrieves a movement with its lines
func (h *StockMovementHandler) GetByID(c *gin.Context) {
	tenantID, movementID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	movement, err := h.movementService.GetByID(c.Request.Context(), tenantID, movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// Validate applies a draft movement to the stock ledger. Validating an
// already validated movement returns its current state unchanged.
func (h *StockMovementHandler) Validate(c *gin.Context) {
	tenantID, movementID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	movement, err := h.movementService.Validate(c.Request.Context(), tenantID, movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}
