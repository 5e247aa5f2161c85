package replenishment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockcore/backend/internal/domain/procurement"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
	"github.com/stockcore/backend/internal/domain/workflow"
)

// --- in-memory fakes ---

type fakeItemRepo struct {
	items map[uuid.UUID]*stock.StockItem
}

func (r *fakeItemRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*stock.StockItem, error) {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByReference(context.Context, uuid.UUID, string) (*stock.StockItem, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]stock.StockItem, error) {
	return nil, nil
}

func (r *fakeItemRepo) FindBelowThreshold(context.Context, uuid.UUID, shared.Filter) ([]stock.StockItem, error) {
	return nil, nil
}

func (r *fakeItemRepo) CountForTenant(context.Context, uuid.UUID, shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *stock.StockItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) SaveWithLock(_ context.Context, item *stock.StockItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) DeleteForTenant(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*procurement.PurchaseOrder
	saves  int
}

func (r *fakeOrderRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindDraftBySupplier(_ context.Context, tenantID, supplierID uuid.UUID) (*procurement.PurchaseOrder, error) {
	for _, order := range r.orders {
		if order.TenantID == tenantID && order.SupplierID == supplierID &&
			order.IsDraft() && order.AutoCreated {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]procurement.PurchaseOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *procurement.PurchaseOrder) error {
	r.orders[order.ID] = order
	r.saves++
	return nil
}

type fakeTaskRepo struct {
	tasks []*workflow.Task
}

func (r *fakeTaskRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*workflow.Task, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeTaskRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]workflow.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) ExistsOpenByKindAndReference(_ context.Context, tenantID uuid.UUID, kind workflow.TaskKind, reference string) (bool, error) {
	for _, task := range r.tasks {
		if task.TenantID == tenantID && task.Kind == kind &&
			task.Reference == reference && task.Status == workflow.TaskStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTaskRepo) Save(_ context.Context, task *workflow.Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

type capturedEvents struct {
	events []shared.DomainEvent
}

func (p *capturedEvents) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// --- fixtures ---

type replenishmentFixture struct {
	tenantID  uuid.UUID
	itemRepo  *fakeItemRepo
	orderRepo *fakeOrderRepo
	taskRepo  *fakeTaskRepo
	publisher *capturedEvents
	service   *Service
}

func newReplenishmentFixture(t *testing.T, policy Policy) *replenishmentFixture {
	t.Helper()
	f := &replenishmentFixture{
		tenantID:  uuid.New(),
		itemRepo:  &fakeItemRepo{items: make(map[uuid.UUID]*stock.StockItem)},
		orderRepo: &fakeOrderRepo{orders: make(map[uuid.UUID]*procurement.PurchaseOrder)},
		taskRepo:  &fakeTaskRepo{},
		publisher: &capturedEvents{},
	}
	f.service = NewService(f.itemRepo, f.orderRepo, f.taskRepo, policy, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *replenishmentFixture) addItem(t *testing.T, reference string, quantity, threshold, unitValue float64, supplierID *uuid.UUID) *stock.StockItem {
	t.Helper()
	item, err := stock.NewStockItem(f.tenantID, reference, reference)
	require.NoError(t, err)
	item.Quantity = decimal.NewFromFloat(quantity)
	item.UnitValue = decimal.NewFromFloat(unitValue)
	require.NoError(t, item.SetReorderThreshold(decimal.NewFromFloat(threshold)))
	if supplierID != nil {
		item.AssignSupplier(*supplierID)
	}
	f.itemRepo.items[item.ID] = item
	return item
}

func (f *replenishmentFixture) check(t *testing.T, itemID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.service.Check(context.Background(), f.tenantID, itemID))
}

func singleOrder(t *testing.T, repo *fakeOrderRepo) *procurement.PurchaseOrder {
	t.Helper()
	require.Len(t, repo.orders, 1)
	for _, order := range repo.orders {
		return order
	}
	return nil
}

// --- tests ---

func TestReplenishmentCheck(t *testing.T) {
	t.Run("creates a draft order, a review task and raises stock.low", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		item := f.addItem(t, "WIDGET-001", 4, 10, 25, &supplierID)

		f.check(t, item.ID)

		order := singleOrder(t, f.orderRepo)
		assert.True(t, order.AutoCreated)
		assert.True(t, order.IsDraft())
		assert.Equal(t, supplierID, order.SupplierID)
		require.Len(t, order.Lines, 1)
		// 2*10 - 4 = 16 units at the current moving-average value.
		assert.True(t, order.Lines[0].Quantity.Equal(decimal.NewFromInt(16)), "qty = %s", order.Lines[0].Quantity)
		assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.NewFromInt(25)))

		require.Len(t, f.taskRepo.tasks, 1)
		task := f.taskRepo.tasks[0]
		assert.Equal(t, workflow.TaskKindReview, task.Kind)
		assert.Equal(t, workflow.TaskPriorityHigh, task.Priority)
		assert.Equal(t, order.Reference, task.Reference)
		require.NotNil(t, task.DueDate)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), *task.DueDate, time.Minute)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, stock.EventTypeStockLow, f.publisher.events[0].EventType())
	})

	t.Run("refill never drops below the threshold", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		// 2*10 - 9.5 = 10.5 > 10: target wins.
		high := f.addItem(t, "WIDGET-001", 9.5, 10, 1, &supplierID)
		f.check(t, high.ID)
		order := singleOrder(t, f.orderRepo)
		assert.True(t, order.Lines[0].Quantity.Equal(decimal.NewFromFloat(10.5)))

		// Multiplier 1: 1*10 - 2 = 8 < 10: floor at the threshold.
		g := newReplenishmentFixture(t, Policy{RefillMultiplier: decimal.NewFromInt(1), ReviewDueIn: time.Hour})
		otherSupplier := uuid.New()
		low := g.addItem(t, "WIDGET-002", 2, 10, 1, &otherSupplier)
		g.check(t, low.ID)
		order = singleOrder(t, g.orderRepo)
		assert.True(t, order.Lines[0].Quantity.Equal(decimal.NewFromInt(10)), "qty = %s", order.Lines[0].Quantity)
	})

	t.Run("repeated breaches reuse the open draft and do not duplicate", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		item := f.addItem(t, "WIDGET-001", 4, 10, 25, &supplierID)

		f.check(t, item.ID)
		item.Quantity = decimal.NewFromInt(2)
		f.check(t, item.ID)
		f.check(t, item.ID)

		order := singleOrder(t, f.orderRepo)
		assert.Len(t, order.Lines, 1)
		assert.Len(t, f.taskRepo.tasks, 1)
		assert.Len(t, f.publisher.events, 1)
	})

	t.Run("two items of one supplier share the draft order", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		first := f.addItem(t, "WIDGET-001", 4, 10, 25, &supplierID)
		second := f.addItem(t, "WIDGET-002", 1, 5, 8, &supplierID)

		f.check(t, first.ID)
		f.check(t, second.ID)

		order := singleOrder(t, f.orderRepo)
		assert.Len(t, order.Lines, 2)
		assert.Len(t, f.taskRepo.tasks, 2)
	})

	t.Run("different suppliers get separate orders", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		firstSupplier := uuid.New()
		secondSupplier := uuid.New()
		first := f.addItem(t, "WIDGET-001", 4, 10, 25, &firstSupplier)
		second := f.addItem(t, "WIDGET-002", 1, 5, 8, &secondSupplier)

		f.check(t, first.ID)
		f.check(t, second.ID)

		assert.Len(t, f.orderRepo.orders, 2)
	})

	t.Run("item above threshold is a no-op", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		item := f.addItem(t, "WIDGET-001", 50, 10, 25, &supplierID)

		f.check(t, item.ID)

		assert.Empty(t, f.orderRepo.orders)
		assert.Empty(t, f.taskRepo.tasks)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("breach without a supplier is a no-op", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		item := f.addItem(t, "WIDGET-001", 4, 10, 25, nil)

		f.check(t, item.ID)

		assert.Empty(t, f.orderRepo.orders)
		assert.Empty(t, f.taskRepo.tasks)
	})

	t.Run("manual drafts are not reused", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		supplierID := uuid.New()
		manual, err := procurement.NewPurchaseOrder(f.tenantID, supplierID, "PO-MANUAL-1")
		require.NoError(t, err)
		require.NoError(t, f.orderRepo.Save(context.Background(), manual))

		item := f.addItem(t, "WIDGET-001", 4, 10, 25, &supplierID)
		f.check(t, item.ID)

		assert.Len(t, f.orderRepo.orders, 2)
		assert.Empty(t, manual.Lines)
	})

	t.Run("unknown item propagates not found", func(t *testing.T) {
		f := newReplenishmentFixture(t, DefaultPolicy())
		err := f.service.Check(context.Background(), f.tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
