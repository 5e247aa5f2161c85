package handler

import (
	"github.com/gin-gonic/gin"
	procurementapp "github.com/stockcore/backend/internal/application/procurement"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procurementapp.OrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procurementapp.OrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes registers purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.POST("/:id/confirm", h.Confirm)
	}
}

// List lists purchase orders, including auto-generated drafts
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	orders, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID retrieves an order with its lines
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	tenantID, orderID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Confirm confirms a draft order after human review
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	tenantID, orderID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Confirm(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
