package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockcore/backend/internal/domain/partner"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
)

// --- in-memory fakes ---

type fakeItemRepo struct {
	items map[uuid.UUID]*stock.StockItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*stock.StockItem)}
}

func cloneItem(item *stock.StockItem) *stock.StockItem {
	clone := *item
	return &clone
}

func (r *fakeItemRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*stock.StockItem, error) {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *fakeItemRepo) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*stock.StockItem, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.Reference == reference {
			return cloneItem(item), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.StockItem, error) {
	out := make([]stock.StockItem, 0)
	for _, item := range r.items {
		if item.TenantID == tenantID {
			out = append(out, *cloneItem(item))
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindBelowThreshold(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.StockItem, error) {
	out := make([]stock.StockItem, 0)
	for _, item := range r.items {
		if item.TenantID == tenantID && item.IsBelowThreshold() {
			out = append(out, *cloneItem(item))
		}
	}
	return out, nil
}

func (r *fakeItemRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *stock.StockItem) error {
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *fakeItemRepo) SaveWithLock(_ context.Context, item *stock.StockItem) error {
	stored, ok := r.items[item.ID]
	if ok && stored.Version != item.Version {
		return shared.ErrConcurrencyConflict
	}
	item.IncrementVersion()
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *fakeItemRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeMovementRepo struct {
	movements map[uuid.UUID]*stock.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: make(map[uuid.UUID]*stock.StockMovement)}
}

func cloneMovement(m *stock.StockMovement) *stock.StockMovement {
	clone := *m
	clone.Lines = append([]stock.MovementLine(nil), m.Lines...)
	return &clone
}

func (r *fakeMovementRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*stock.StockMovement, error) {
	m, ok := r.movements[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cloneMovement(m), nil
}

func (r *fakeMovementRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.StockMovement, error) {
	out := make([]stock.StockMovement, 0)
	for _, m := range r.movements {
		if m.TenantID == tenantID {
			out = append(out, *cloneMovement(m))
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMovementRepo) Save(_ context.Context, movement *stock.StockMovement) error {
	r.movements[movement.ID] = cloneMovement(movement)
	return nil
}

// rollbackTxScope mimics a database transaction over the in-memory
// fakes: on error every store is restored to its pre-call state.
type rollbackTxScope struct {
	itemRepo     *fakeItemRepo
	movementRepo *fakeMovementRepo
}

func (s *rollbackTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	itemsBefore := make(map[uuid.UUID]*stock.StockItem, len(s.itemRepo.items))
	for id, item := range s.itemRepo.items {
		itemsBefore[id] = cloneItem(item)
	}
	movementsBefore := make(map[uuid.UUID]*stock.StockMovement, len(s.movementRepo.movements))
	for id, m := range s.movementRepo.movements {
		movementsBefore[id] = cloneMovement(m)
	}

	if err := fn(s); err != nil {
		s.itemRepo.items = itemsBefore
		s.movementRepo.movements = movementsBefore
		return err
	}
	return nil
}

func (s *rollbackTxScope) StockItemRepo() stock.StockItemRepository { return s.itemRepo }

func (s *rollbackTxScope) MovementRepo() stock.StockMovementRepository { return s.movementRepo }

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*partner.Supplier
}

func (r *fakeSupplierRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok || s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSupplierRepo) Save(_ context.Context, s *partner.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

type fakeContactRepo struct {
	contacts map[uuid.UUID]*partner.Contact
}

func (r *fakeContactRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Contact, error) {
	c, ok := r.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *fakeContactRepo) Save(_ context.Context, c *partner.Contact) error {
	r.contacts[c.ID] = c
	return nil
}

type recordingChecker struct {
	checked []uuid.UUID
}

func (c *recordingChecker) Check(_ context.Context, _, stockItemID uuid.UUID) error {
	c.checked = append(c.checked, stockItemID)
	return nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type recordingAudit struct {
	records int
}

func (a *recordingAudit) Record(_ context.Context, _ uuid.UUID, _ string, _, _ map[string]any) {
	a.records++
}

// --- fixtures ---

type movementFixture struct {
	tenantID     uuid.UUID
	itemRepo     *fakeItemRepo
	movementRepo *fakeMovementRepo
	supplierRepo *fakeSupplierRepo
	contactRepo  *fakeContactRepo
	checker      *recordingChecker
	publisher    *recordingPublisher
	audit        *recordingAudit
	service      *MovementService
}

func newMovementFixture(t *testing.T) *movementFixture {
	t.Helper()
	f := &movementFixture{
		tenantID:     uuid.New(),
		itemRepo:     newFakeItemRepo(),
		movementRepo: newFakeMovementRepo(),
		supplierRepo: &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*partner.Supplier)},
		contactRepo:  &fakeContactRepo{contacts: make(map[uuid.UUID]*partner.Contact)},
		checker:      &recordingChecker{},
		publisher:    &recordingPublisher{},
		audit:        &recordingAudit{},
	}
	txScope := &rollbackTxScope{itemRepo: f.itemRepo, movementRepo: f.movementRepo}
	f.service = NewMovementService(f.movementRepo, f.supplierRepo, f.contactRepo, txScope, zap.NewNop())
	f.service.SetReplenishmentChecker(f.checker)
	f.service.SetEventPublisher(f.publisher)
	f.service.SetAuditRecorder(f.audit)
	return f
}

func (f *movementFixture) addItem(t *testing.T, reference string, quantity, unitValue float64) *stock.StockItem {
	t.Helper()
	item, err := stock.NewStockItem(f.tenantID, reference, reference)
	require.NoError(t, err)
	item.Quantity = decimal.NewFromFloat(quantity)
	item.UnitValue = decimal.NewFromFloat(unitValue)
	require.NoError(t, f.itemRepo.Save(context.Background(), item))
	return item
}

func (f *movementFixture) addDraft(t *testing.T, movementType stock.MovementType, lines ...stock.MovementLine) *stock.StockMovement {
	t.Helper()
	movement, err := stock.NewStockMovement(f.tenantID, movementType, "MOV-TEST")
	require.NoError(t, err)
	for _, line := range lines {
		require.NoError(t, movement.AddLine(line.StockItemID, line.Quantity, line.UnitPrice, line.Description))
	}
	require.NoError(t, f.movementRepo.Save(context.Background(), movement))
	return movement
}

func line(itemID uuid.UUID, quantity, unitPrice float64) stock.MovementLine {
	return stock.MovementLine{
		StockItemID: itemID,
		Quantity:    decimal.NewFromFloat(quantity),
		UnitPrice:   decimal.NewFromFloat(unitPrice),
	}
}

// --- tests ---

func TestMovementServiceCreate(t *testing.T) {
	t.Run("creates a draft with lines", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 0, 0)

		resp, err := f.service.Create(context.Background(), f.tenantID, CreateMovementRequest{
			Type:      "RECEPTION",
			Reference: "MOV-2026-0001",
			Lines: []CreateMovementLineRequest{
				{StockItemID: item.ID.String(), Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Len(t, resp.Lines, 1)

		stored := f.movementRepo.movements[uuid.MustParse(resp.ID)]
		require.NotNil(t, stored)
		assert.False(t, stored.IsValidated())
	})

	t.Run("resolves the supplier name for receptions", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 0, 0)

		supplier, err := partner.NewSupplier(f.tenantID, "SUP-001", "ACME Industries")
		require.NoError(t, err)
		require.NoError(t, f.supplierRepo.Save(context.Background(), supplier))

		resp, err := f.service.Create(context.Background(), f.tenantID, CreateMovementRequest{
			Type:      "RECEPTION",
			Reference: "MOV-2026-0002",
			PartnerID: supplier.ID.String(),
			Lines: []CreateMovementLineRequest{
				{StockItemID: item.ID.String(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "ACME Industries", resp.PartnerName)
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		f := newMovementFixture(t)
		_, err := f.service.Create(context.Background(), f.tenantID, CreateMovementRequest{
			Type:      "TRANSFER",
			Reference: "MOV-1",
		})
		require.Error(t, err)
	})
}

func TestMovementServiceValidate(t *testing.T) {
	t.Run("applies a reception to the ledger", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 10, 100)
		movement := f.addDraft(t, stock.MovementTypeReception, line(item.ID, 5, 160))

		resp, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.NoError(t, err)
		assert.Equal(t, "VALIDATED", resp.Status)

		stored := f.itemRepo.items[item.ID]
		assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(15)), "quantity = %s", stored.Quantity)
		assert.True(t, stored.UnitValue.Equal(decimal.NewFromInt(120)), "unit value = %s", stored.UnitValue)
	})

	t.Run("runs replenishment, audit and events after commit", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 0, 0)
		movement := f.addDraft(t, stock.MovementTypeReception, line(item.ID, 5, 10))

		_, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{item.ID}, f.checker.checked)
		assert.Equal(t, 1, f.audit.records)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, stock.EventTypeStockReceived, f.publisher.events[0].EventType())
	})

	t.Run("re-validation is idempotent", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 0, 0)
		movement := f.addDraft(t, stock.MovementTypeReception, line(item.ID, 5, 10))

		_, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.NoError(t, err)

		resp, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.NoError(t, err)
		assert.Equal(t, "VALIDATED", resp.Status)

		// The ledger moved once and the automation ran once.
		stored := f.itemRepo.items[item.ID]
		assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(5)), "quantity = %s", stored.Quantity)
		assert.Len(t, f.checker.checked, 1)
		assert.Equal(t, 1, f.audit.records)
		assert.Len(t, f.publisher.events, 1)
	})

	t.Run("aborts entirely when one line is short", func(t *testing.T) {
		f := newMovementFixture(t)
		plentiful := f.addItem(t, "WIDGET-001", 100, 10)
		scarce := f.addItem(t, "WIDGET-002", 5, 10)
		movement := f.addDraft(t, stock.MovementTypeIssue,
			line(plentiful.ID, 20, 0),
			line(scarce.ID, 8, 0),
		)

		_, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.Error(t, err)

		var insufficient *stock.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)

		// Neither item changed, the movement stayed draft, no automation ran.
		assert.True(t, f.itemRepo.items[plentiful.ID].Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, f.itemRepo.items[scarce.ID].Quantity.Equal(decimal.NewFromInt(5)))
		assert.False(t, f.movementRepo.movements[movement.ID].IsValidated())
		assert.Empty(t, f.checker.checked)
		assert.Equal(t, 0, f.audit.records)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("inventory reconciles to the counted quantity", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 50, 12)
		movement := f.addDraft(t, stock.MovementTypeInventory, line(item.ID, 42, 0))

		_, err := f.service.Validate(context.Background(), f.tenantID, movement.ID)
		require.NoError(t, err)

		stored := f.itemRepo.items[item.ID]
		assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(42)))
		assert.True(t, stored.UnitValue.Equal(decimal.NewFromInt(12)))
	})

	t.Run("unknown movement returns not found", func(t *testing.T) {
		f := newMovementFixture(t)
		_, err := f.service.Validate(context.Background(), f.tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("movement of another tenant is invisible", func(t *testing.T) {
		f := newMovementFixture(t)
		item := f.addItem(t, "WIDGET-001", 0, 0)
		movement := f.addDraft(t, stock.MovementTypeReception, line(item.ID, 1, 1))

		_, err := f.service.Validate(context.Background(), uuid.New(), movement.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
