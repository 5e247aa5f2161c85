package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/procurement"
	"github.com/stockcore/backend/internal/domain/shared"
)

// OrderLineResponse represents a purchase order line in API responses
type OrderLineResponse struct {
	ID          string          `json:"id"`
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID          string              `json:"id"`
	Reference   string              `json:"reference"`
	Status      string              `json:"status"`
	SupplierID  string              `json:"supplier_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	AutoCreated bool                `json:"auto_created"`
	GeneratedAt *time.Time          `json:"generated_at,omitempty"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewOrderResponse builds the API representation of an order
func NewOrderResponse(order *procurement.PurchaseOrder) *OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineResponse{
			ID:          line.ID.String(),
			StockItemID: line.StockItemID.String(),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return &OrderResponse{
		ID:          order.ID.String(),
		Reference:   order.Reference,
		Status:      string(order.Status),
		SupplierID:  order.SupplierID.String(),
		TotalAmount: order.TotalAmount,
		AutoCreated: order.AutoCreated,
		GeneratedAt: order.GeneratedAt,
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// OrderService exposes read and confirm operations over purchase
// orders, including the drafts generated by the replenishment engine.
type OrderService struct {
	orderRepo procurement.PurchaseOrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo procurement.PurchaseOrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// GetByID retrieves an order with its lines
func (s *OrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderResponse(order), nil
}

// List retrieves orders for a tenant
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *NewOrderResponse(&orders[i]))
	}
	return responses, nil
}

// Confirm moves a draft order to Confirmed, closing it to the
// replenishment engine: further threshold breaches for the supplier
// will open a fresh draft.
func (s *OrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Confirm(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	return NewOrderResponse(order), nil
}
