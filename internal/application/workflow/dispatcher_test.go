package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockcore/backend/internal/domain/partner"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/trade"
	"github.com/stockcore/backend/internal/domain/workflow"
)

// --- fakes ---

type stubAction struct {
	name     string
	err      error
	panicMsg string
	calls    []map[string]any
}

func (a *stubAction) EventName() string { return a.name }

func (a *stubAction) Execute(_ context.Context, _ uuid.UUID, payload map[string]any) error {
	a.calls = append(a.calls, payload)
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	return a.err
}

type memTaskRepo struct {
	tasks []*workflow.Task
}

func (r *memTaskRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*workflow.Task, error) {
	return nil, shared.ErrNotFound
}

func (r *memTaskRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]workflow.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) ExistsOpenByKindAndReference(_ context.Context, tenantID uuid.UUID, kind workflow.TaskKind, reference string) (bool, error) {
	for _, task := range r.tasks {
		if task.TenantID == tenantID && task.Kind == kind &&
			task.Reference == reference && task.Status == workflow.TaskStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTaskRepo) Save(_ context.Context, task *workflow.Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

type memQuoteRepo struct {
	quotes []*trade.Quote
}

func (r *memQuoteRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*trade.Quote, error) {
	return nil, shared.ErrNotFound
}

func (r *memQuoteRepo) Save(_ context.Context, quote *trade.Quote) error {
	r.quotes = append(r.quotes, quote)
	return nil
}

type memContactRepo struct {
	contacts map[uuid.UUID]*partner.Contact
}

func (r *memContactRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Contact, error) {
	c, ok := r.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memContactRepo) Save(_ context.Context, c *partner.Contact) error {
	r.contacts[c.ID] = c
	return nil
}

// --- dispatcher ---

func TestDispatcherTrigger(t *testing.T) {
	t.Run("routes to the registered action", func(t *testing.T) {
		d := NewDispatcher(zap.NewNop())
		action := &stubAction{name: "deal.won"}
		other := &stubAction{name: "invoice.overdue"}
		d.Register(action)
		d.Register(other)

		payload := map[string]any{"deal_id": "42"}
		d.Trigger(context.Background(), uuid.New(), "deal.won", payload)

		require.Len(t, action.calls, 1)
		assert.Equal(t, payload, action.calls[0])
		assert.Empty(t, other.calls)
	})

	t.Run("unknown event is ignored", func(t *testing.T) {
		d := NewDispatcher(zap.NewNop())
		d.Trigger(context.Background(), uuid.New(), "order.shipped", nil)
	})

	t.Run("a failing action does not stop the others", func(t *testing.T) {
		d := NewDispatcher(zap.NewNop())
		failing := &stubAction{name: "deal.won", err: errors.New("boom")}
		healthy := &stubAction{name: "deal.won"}
		d.Register(failing)
		d.Register(healthy)

		d.Trigger(context.Background(), uuid.New(), "deal.won", nil)

		assert.Len(t, failing.calls, 1)
		assert.Len(t, healthy.calls, 1)
	})

	t.Run("a panicking action is contained", func(t *testing.T) {
		d := NewDispatcher(zap.NewNop())
		panicking := &stubAction{name: "deal.won", panicMsg: "nil map write"}
		healthy := &stubAction{name: "deal.won"}
		d.Register(panicking)
		d.Register(healthy)

		assert.NotPanics(t, func() {
			d.Trigger(context.Background(), uuid.New(), "deal.won", nil)
		})
		assert.Len(t, healthy.calls, 1)
	})
}

func TestEventBridge(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	action := &stubAction{name: "stock.low"}
	d.Register(action)
	bridge := NewEventBridge(d)

	assert.Empty(t, bridge.EventTypes())

	tenantID := uuid.New()
	event := shared.NewBaseDomainEvent("stock.low", "stock_item", uuid.New(), tenantID)
	require.NoError(t, bridge.Handle(context.Background(), &event))
	assert.Len(t, action.calls, 1)
}

// --- actions ---

func TestDealWonAction(t *testing.T) {
	t.Run("opens a draft quote and a kickoff task", func(t *testing.T) {
		quotes := &memQuoteRepo{}
		tasks := &memTaskRepo{}
		action := NewDealWonAction(quotes, tasks, zap.NewNop())
		tenantID := uuid.New()
		dealID := uuid.New()

		err := action.Execute(context.Background(), tenantID, map[string]any{
			"deal_id":        dealID.String(),
			"deal_name":      "Acme rollout",
			"deal_reference": "DEAL-2026-0007",
			"amount":         12500.0,
		})
		require.NoError(t, err)

		require.Len(t, quotes.quotes, 1)
		quote := quotes.quotes[0]
		assert.Equal(t, "Q-DEAL-2026-0007", quote.Reference)
		require.NotNil(t, quote.DealID)
		assert.Equal(t, dealID, *quote.DealID)

		require.Len(t, tasks.tasks, 1)
		task := tasks.tasks[0]
		assert.Equal(t, workflow.TaskKindKickoff, task.Kind)
		assert.Equal(t, "DEAL-2026-0007", task.Reference)
		assert.Equal(t, workflow.TaskPriorityHigh, task.Priority)
	})
}

func TestInvoiceOverdueAction(t *testing.T) {
	newAction := func() (*InvoiceOverdueAction, *memTaskRepo, *memContactRepo) {
		tasks := &memTaskRepo{}
		contacts := &memContactRepo{contacts: make(map[uuid.UUID]*partner.Contact)}
		return NewInvoiceOverdueAction(tasks, contacts, zap.NewNop()), tasks, contacts
	}

	t.Run("opens a collection task and flags the contact", func(t *testing.T) {
		action, tasks, contacts := newAction()
		tenantID := uuid.New()

		contact, err := partner.NewContact(tenantID, "Jordan Diaz")
		require.NoError(t, err)
		contacts.contacts[contact.ID] = contact

		err = action.Execute(context.Background(), tenantID, map[string]any{
			"invoice_reference": "INV-2026-0042",
			"amount_due":        830.5,
			"contact_id":        contact.ID.String(),
		})
		require.NoError(t, err)

		require.Len(t, tasks.tasks, 1)
		task := tasks.tasks[0]
		assert.Equal(t, workflow.TaskKindCollection, task.Kind)
		assert.Equal(t, "INV-2026-0042", task.Reference)
		assert.Contains(t, task.Description, "830.5")

		assert.Equal(t, partner.ContactStatusAtRisk, contact.Status)
	})

	t.Run("does not duplicate an open collection task", func(t *testing.T) {
		action, tasks, _ := newAction()
		tenantID := uuid.New()
		payload := map[string]any{"invoice_reference": "INV-2026-0042"}

		require.NoError(t, action.Execute(context.Background(), tenantID, payload))
		require.NoError(t, action.Execute(context.Background(), tenantID, payload))

		assert.Len(t, tasks.tasks, 1)
	})

	t.Run("a completed task no longer suppresses", func(t *testing.T) {
		action, tasks, _ := newAction()
		tenantID := uuid.New()
		payload := map[string]any{"invoice_reference": "INV-2026-0042"}

		require.NoError(t, action.Execute(context.Background(), tenantID, payload))
		require.NoError(t, tasks.tasks[0].Complete())
		require.NoError(t, action.Execute(context.Background(), tenantID, payload))

		assert.Len(t, tasks.tasks, 2)
	})

	t.Run("rejects a payload without invoice_reference", func(t *testing.T) {
		action, _, _ := newAction()
		err := action.Execute(context.Background(), uuid.New(), map[string]any{})
		require.Error(t, err)
	})

	t.Run("a missing contact does not fail the automation", func(t *testing.T) {
		action, tasks, _ := newAction()
		err := action.Execute(context.Background(), uuid.New(), map[string]any{
			"invoice_reference": "INV-2026-0001",
			"contact_id":        uuid.New().String(),
		})
		require.NoError(t, err)
		assert.Len(t, tasks.tasks, 1)
	})
}

func TestEmployeeCreatedAction(t *testing.T) {
	t.Run("opens the onboarding checklist assigned to the hire", func(t *testing.T) {
		tasks := &memTaskRepo{}
		action := NewEmployeeCreatedAction(tasks, zap.NewNop())
		tenantID := uuid.New()
		employeeID := uuid.New()

		err := action.Execute(context.Background(), tenantID, map[string]any{
			"employee_id":   employeeID.String(),
			"employee_name": "Sam Lee",
		})
		require.NoError(t, err)

		require.Len(t, tasks.tasks, len(onboardingChecklist))
		for _, task := range tasks.tasks {
			assert.Equal(t, workflow.TaskKindOnboarding, task.Kind)
			require.NotNil(t, task.AssigneeID)
			assert.Equal(t, employeeID, *task.AssigneeID)
			assert.Contains(t, task.Title, "Sam Lee")
		}
	})

	t.Run("rejects a payload without employee_id", func(t *testing.T) {
		action := NewEmployeeCreatedAction(&memTaskRepo{}, zap.NewNop())
		err := action.Execute(context.Background(), uuid.New(), map[string]any{"employee_name": "Sam"})
		require.Error(t, err)
	})
}

func TestStockLowAction(t *testing.T) {
	action := NewStockLowAction(zap.NewNop())
	assert.Equal(t, "stock.low", action.EventName())
	assert.NoError(t, action.Execute(context.Background(), uuid.New(), map[string]any{
		"reference": "WIDGET-001",
		"quantity":  "4",
	}))
}
