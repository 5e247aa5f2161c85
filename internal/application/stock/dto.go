package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/stock"
)

// CreateMovementLineRequest is one line of a movement creation request
type CreateMovementLineRequest struct {
	StockItemID string          `json:"stock_item_id" binding:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description" binding:"max=255"`
}

// CreateMovementRequest is the payload for creating a draft movement
type CreateMovementRequest struct {
	Type        string                      `json:"type" binding:"required,oneof=RECEPTION ISSUE INVENTORY"`
	Reference   string                      `json:"reference" binding:"required,max=100"`
	PartnerID   string                      `json:"partner_id" binding:"omitempty,uuid"`
	PartnerName string                      `json:"partner_name" binding:"max=255"`
	Lines       []CreateMovementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// MovementLineResponse is one line of a movement in API responses
type MovementLineResponse struct {
	ID          string          `json:"id"`
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description,omitempty"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Status      string                 `json:"status"`
	Reference   string                 `json:"reference"`
	PartnerID   string                 `json:"partner_id,omitempty"`
	PartnerName string                 `json:"partner_name,omitempty"`
	Lines       []MovementLineResponse `json:"lines"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewMovementResponse maps a movement aggregate to its API representation
func NewMovementResponse(m *stock.StockMovement) *MovementResponse {
	resp := &MovementResponse{
		ID:          m.ID.String(),
		Type:        m.Type.String(),
		Status:      string(m.Status),
		Reference:   m.Reference,
		PartnerName: m.PartnerName,
		Lines:       make([]MovementLineResponse, 0, len(m.Lines)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.PartnerID != nil {
		resp.PartnerID = m.PartnerID.String()
	}
	for _, line := range m.Lines {
		resp.Lines = append(resp.Lines, MovementLineResponse{
			ID:          line.ID.String(),
			StockItemID: line.StockItemID.String(),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Description: line.Description,
		})
	}
	return resp
}

// CreateStockItemRequest is the payload for creating a stock item.
// A requested initial quantity is not written directly: it is realized
// as a synthetic Reception movement so costing stays consistent.
type CreateStockItemRequest struct {
	Reference        string          `json:"reference" binding:"required,max=100"`
	Name             string          `json:"name" binding:"required,max=255"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	SupplierID       string          `json:"supplier_id" binding:"omitempty,uuid"`
	CategoryID       string          `json:"category_id" binding:"omitempty,uuid"`
	InitialQuantity  decimal.Decimal `json:"initial_quantity"`
	InitialUnitPrice decimal.Decimal `json:"initial_unit_price"`
}

// UpdateStockItemRequest is the payload for editing a stock item.
// Quantity is deliberately absent: quantities change only through
// movement validation.
type UpdateStockItemRequest struct {
	Name             *string          `json:"name" binding:"omitempty,max=255"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
	SupplierID       *string          `json:"supplier_id" binding:"omitempty,uuid"`
}

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"`
	Name             string          `json:"name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitValue        decimal.Decimal `json:"unit_value"`
	TotalValue       decimal.Decimal `json:"total_value"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	SupplierID       string          `json:"supplier_id,omitempty"`
	BelowThreshold   bool            `json:"below_threshold"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// NewStockItemResponse maps a stock item aggregate to its API representation
func NewStockItemResponse(item *stock.StockItem) *StockItemResponse {
	resp := &StockItemResponse{
		ID:               item.ID.String(),
		Reference:        item.Reference,
		Name:             item.Name,
		Quantity:         item.Quantity,
		UnitValue:        item.UnitValue,
		TotalValue:       item.TotalValue(),
		ReorderThreshold: item.ReorderThreshold,
		BelowThreshold:   item.IsBelowThreshold(),
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
		Version:          item.Version,
	}
	if item.SupplierID != nil {
		resp.SupplierID = item.SupplierID.String()
	}
	return resp
}

// parseOptionalUUID parses a UUID string, returning nil for empty input
func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
