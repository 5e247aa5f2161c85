package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeStockItem     = "StockItem"
	AggregateTypeStockMovement = "StockMovement"
)

// Event name constants. These names are also the routing keys for
// workflow automation and webhook subscriptions.
const (
	EventTypeStockReceived = "stock.reception"
	EventTypeStockLow      = "stock.low"
)

// StockReceivedEvent is raised when a Reception movement is validated
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID `json:"movement_id"`
	Reference  string    `json:"reference"`
	LineCount  int       `json:"line_count"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(movement *StockMovement) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockMovement, movement.ID, movement.TenantID),
		MovementID:      movement.ID,
		Reference:       movement.Reference,
		LineCount:       len(movement.Lines),
	}
}

// Payload returns the event data for automation and webhook delivery
func (e *StockReceivedEvent) Payload() map[string]any {
	return map[string]any{
		"movement_id": e.MovementID.String(),
		"reference":   e.Reference,
		"line_count":  e.LineCount,
	}
}

// StockLowEvent is raised when an item's quantity falls below its
// reorder threshold
type StockLowEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID       `json:"stock_item_id"`
	Reference   string          `json:"reference"`
	Quantity    decimal.Decimal `json:"quantity"`
	Threshold   decimal.Decimal `json:"threshold"`
}

// NewStockLowEvent creates a new StockLowEvent
func NewStockLowEvent(item *StockItem) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		Reference:       item.Reference,
		Quantity:        item.Quantity,
		Threshold:       item.ReorderThreshold,
	}
}

// Payload returns the event data for automation and webhook delivery
func (e *StockLowEvent) Payload() map[string]any {
	return map[string]any{
		"stock_item_id": e.StockItemID.String(),
		"reference":     e.Reference,
		"quantity":      e.Quantity.String(),
		"threshold":     e.Threshold.String(),
	}
}
