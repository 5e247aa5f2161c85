package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// StockLowAction is the workflow-side handler for stock.low. The
// quantity-affecting work (draft order, review task) is done by the
// replenishment engine before the event is raised; this action only
// keeps an operational trace.
type StockLowAction struct {
	logger *zap.Logger
}

// NewStockLowAction creates a new StockLowAction
func NewStockLowAction(logger *zap.Logger) *StockLowAction {
	return &StockLowAction{logger: logger}
}

// EventName returns the event this action reacts to
func (a *StockLowAction) EventName() string {
	return stock.EventTypeStockLow
}

// Execute logs the breach
func (a *StockLowAction) Execute(_ context.Context, tenantID uuid.UUID, payload map[string]any) error {
	a.logger.Warn("stock below reorder threshold",
		zap.String("tenant_id", tenantID.String()),
		zap.String("stock_item_id", payloadString(payload, "stock_item_id")),
		zap.String("reference", payloadString(payload, "reference")),
		zap.String("quantity", payloadString(payload, "quantity")),
		zap.String("threshold", payloadString(payload, "threshold")),
	)
	return nil
}

var _ Action = (*StockLowAction)(nil)
