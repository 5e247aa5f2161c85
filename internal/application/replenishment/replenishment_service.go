package replenishment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/procurement"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
	"github.com/stockcore/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// Policy tunes the replenishment heuristic. The refill target is
// multiplier·threshold − quantity (floored at the threshold itself);
// it is a stock-keeping heuristic, not a demand forecast, and tenants
// may tune it.
type Policy struct {
	// RefillMultiplier scales the threshold into the restock target
	RefillMultiplier decimal.Decimal
	// ReviewDueIn is how long a human has to approve an auto order
	ReviewDueIn time.Duration
}

// DefaultPolicy returns the stock policy defaults
func DefaultPolicy() Policy {
	return Policy{
		RefillMultiplier: decimal.NewFromInt(2),
		ReviewDueIn:      48 * time.Hour,
	}
}

// Service is the replenishment engine. After any ledger-mutating
// operation it checks the affected item against its reorder threshold
// and, on a breach, creates or augments the supplier's draft purchase
// order, opens a review task, and raises stock.low.
type Service struct {
	itemRepo  stock.StockItemRepository
	orderRepo procurement.PurchaseOrderRepository
	taskRepo  workflow.TaskRepository
	publisher shared.EventPublisher
	policy    Policy
	logger    *zap.Logger
}

// NewService creates a new replenishment Service
func NewService(
	itemRepo stock.StockItemRepository,
	orderRepo procurement.PurchaseOrderRepository,
	taskRepo workflow.TaskRepository,
	policy Policy,
	logger *zap.Logger,
) *Service {
	if policy.RefillMultiplier.LessThanOrEqual(decimal.Zero) {
		policy.RefillMultiplier = DefaultPolicy().RefillMultiplier
	}
	if policy.ReviewDueIn <= 0 {
		policy.ReviewDueIn = DefaultPolicy().ReviewDueIn
	}
	return &Service{
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		taskRepo:  taskRepo,
		policy:    policy,
		logger:    logger,
	}
}

// SetEventPublisher wires the domain event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Check evaluates one stock item against its reorder threshold. A
// breach that was already actioned (the item has a line on the open
// draft order) is skipped, so repeated breaches without an approval in
// between yield exactly one order line.
func (s *Service) Check(ctx context.Context, tenantID, stockItemID uuid.UUID) error {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, stockItemID)
	if err != nil {
		return err
	}
	if !item.IsBelowThreshold() || !item.HasSupplier() {
		return nil
	}

	order, created, err := s.findOrCreateDraftOrder(ctx, tenantID, *item.SupplierID)
	if err != nil {
		return err
	}

	if order.HasLineForItem(item.ID) {
		// Dedupe: the breach was already actioned on this draft order.
		s.logger.Debug("replenishment already pending",
			zap.String("stock_item_id", item.ID.String()),
			zap.String("order_reference", order.Reference),
		)
		return nil
	}

	refillQty := s.refillQuantity(item)
	if err := order.AddLine(item.ID, refillQty, item.UnitValue); err != nil {
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return err
	}

	if err := s.createReviewTask(ctx, tenantID, item, order, refillQty); err != nil {
		// The order is already persisted; a missing review task is
		// recoverable, so log and keep going.
		s.logger.Error("creating replenishment review task failed",
			zap.String("order_reference", order.Reference),
			zap.Error(err),
		)
	}

	s.logger.Info("low stock actioned",
		zap.String("stock_item_id", item.ID.String()),
		zap.String("reference", item.Reference),
		zap.String("quantity", item.Quantity.String()),
		zap.String("threshold", item.ReorderThreshold.String()),
		zap.String("refill_quantity", refillQty.String()),
		zap.String("order_reference", order.Reference),
		zap.Bool("order_created", created),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, stock.NewStockLowEvent(item)); err != nil {
			s.logger.Error("publishing stock.low failed", zap.Error(err))
		}
	}
	return nil
}

// refillQuantity computes how much to order: enough to reach
// multiplier·threshold, never less than the threshold itself
func (s *Service) refillQuantity(item *stock.StockItem) decimal.Decimal {
	target := item.ReorderThreshold.Mul(s.policy.RefillMultiplier).Sub(item.Quantity)
	if target.LessThan(item.ReorderThreshold) {
		return item.ReorderThreshold
	}
	return target
}

// findOrCreateDraftOrder returns the supplier's open auto draft order,
// creating one when none exists
func (s *Service) findOrCreateDraftOrder(ctx context.Context, tenantID, supplierID uuid.UUID) (*procurement.PurchaseOrder, bool, error) {
	order, err := s.orderRepo.FindDraftBySupplier(ctx, tenantID, supplierID)
	if err == nil {
		return order, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	order, err = procurement.NewAutoPurchaseOrder(tenantID, supplierID)
	if err != nil {
		return nil, false, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// createReviewTask opens a high-priority task asking a human to approve
// the auto-generated order
func (s *Service) createReviewTask(ctx context.Context, tenantID uuid.UUID, item *stock.StockItem, order *procurement.PurchaseOrder, refillQty decimal.Decimal) error {
	task, err := workflow.NewTask(tenantID, workflow.TaskKindReview,
		fmt.Sprintf("Review replenishment order %s", order.Reference))
	if err != nil {
		return err
	}
	task.WithPriority(workflow.TaskPriorityHigh).
		WithReference(order.Reference).
		WithDueDate(time.Now().Add(s.policy.ReviewDueIn)).
		WithDescription(fmt.Sprintf("%s fell to %s (threshold %s); ordered %s units.",
			item.Reference, item.Quantity.String(), item.ReorderThreshold.String(), refillQty.String()))
	return s.taskRepo.Save(ctx, task)
}
