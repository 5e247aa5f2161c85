package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stockapp "github.com/stockcore/backend/internal/application/stock"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/interfaces/http/dto"
)

// StockItemHandler handles stock item API endpoints
type StockItemHandler struct {
	BaseHandler
	itemService *stockapp.StockItemService
}

// NewStockItemHandler creates a new StockItemHandler
func NewStockItemHandler(itemService *stockapp.StockItemService) *StockItemHandler {
	return &StockItemHandler{itemService: itemService}
}

// RegisterRoutes registers stock item routes
func (h *StockItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/stock-items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/low", h.ListBelowThreshold)
		items.GET("/:id", h.GetByID)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}

// Create creates a stock item. An initial quantity is applied through a
// validated Reception movement so the average cost is seeded correctly.
func (h *StockItemHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	var req stockapp.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List lists stock items
func (h *StockItemHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.itemService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListBelowThreshold lists items currently breaching their reorder threshold
func (h *StockItemHandler) ListBelowThreshold(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	items, err := h.itemService.ListBelowThreshold(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID retrieves a stock item
func (h *StockItemHandler) GetByID(c *gin.Context) {
	tenantID, itemID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update edits a stock item's name, threshold or supplier. Quantities
// are never editable here; corrections go through Inventory movements.
func (h *StockItemHandler) Update(c *gin.Context) {
	tenantID, itemID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	var req stockapp.UpdateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete removes a stock item
func (h *StockItemHandler) Delete(c *gin.Context) {
	tenantID, itemID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), tenantID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// bindTenantAndID resolves the tenant and the :id path parameter
func (h *BaseHandler) bindTenantAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return uuid.Nil, uuid.Nil, false
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}

// bindFilter binds common pagination query parameters
func (h *BaseHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}
