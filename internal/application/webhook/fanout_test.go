package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/webhook"
)

type fakeSubscriptionRepo struct {
	subs map[uuid.UUID][]webhook.Subscription
	err  error
}

func (r *fakeSubscriptionRepo) FindActiveByEvent(_ context.Context, tenantID uuid.UUID, eventName string) ([]webhook.Subscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	matched := make([]webhook.Subscription, 0)
	for _, sub := range r.subs[tenantID] {
		if sub.Matches(eventName) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

type enqueuedJob struct {
	url     string
	event   string
	payload map[string]any
	secret  string
}

type fakeEnqueuer struct {
	jobs []enqueuedJob
}

func (q *fakeEnqueuer) Enqueue(url, event string, payload map[string]any, secret string) {
	q.jobs = append(q.jobs, enqueuedJob{url: url, event: event, payload: payload, secret: secret})
}

func newSubscription(tenantID uuid.UUID, url, secret string, events ...string) webhook.Subscription {
	return webhook.Subscription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		URL:                 url,
		Secret:              secret,
		Events:              events,
		Active:              true,
	}
}

func TestFanoutHandle(t *testing.T) {
	t.Run("enqueues one job per matching subscription", func(t *testing.T) {
		tenantID := uuid.New()
		repo := &fakeSubscriptionRepo{subs: map[uuid.UUID][]webhook.Subscription{
			tenantID: {
				newSubscription(tenantID, "https://a.example.com/hook", "secret-a", "stock.low"),
				newSubscription(tenantID, "https://b.example.com/hook", "", "stock.low", "deal.won"),
				newSubscription(tenantID, "https://c.example.com/hook", "secret-c", "invoice.overdue"),
			},
		}}
		queue := &fakeEnqueuer{}
		fanout := NewFanout(repo, queue, zap.NewNop())

		event := shared.NewBaseDomainEvent("stock.low", "stock_item", uuid.New(), tenantID)
		require.NoError(t, fanout.Handle(context.Background(), &event))

		require.Len(t, queue.jobs, 2)
		assert.Equal(t, "https://a.example.com/hook", queue.jobs[0].url)
		assert.Equal(t, "secret-a", queue.jobs[0].secret)
		assert.Equal(t, "stock.low", queue.jobs[0].event)
		assert.Equal(t, tenantID.String(), queue.jobs[0].payload["tenant_id"])
		assert.Equal(t, "https://b.example.com/hook", queue.jobs[1].url)
		assert.Empty(t, queue.jobs[1].secret)
	})

	t.Run("events of other tenants are invisible", func(t *testing.T) {
		subscribed := uuid.New()
		repo := &fakeSubscriptionRepo{subs: map[uuid.UUID][]webhook.Subscription{
			subscribed: {newSubscription(subscribed, "https://a.example.com/hook", "", "deal.won")},
		}}
		queue := &fakeEnqueuer{}
		fanout := NewFanout(repo, queue, zap.NewNop())

		event := shared.NewBaseDomainEvent("deal.won", "deal", uuid.New(), uuid.New())
		require.NoError(t, fanout.Handle(context.Background(), &event))
		assert.Empty(t, queue.jobs)
	})

	t.Run("a lookup failure never bubbles up", func(t *testing.T) {
		repo := &fakeSubscriptionRepo{err: errors.New("connection refused")}
		queue := &fakeEnqueuer{}
		fanout := NewFanout(repo, queue, zap.NewNop())

		event := shared.NewBaseDomainEvent("deal.won", "deal", uuid.New(), uuid.New())
		assert.NoError(t, fanout.Handle(context.Background(), &event))
		assert.Empty(t, queue.jobs)
	})

	t.Run("subscribes to every event type", func(t *testing.T) {
		fanout := NewFanout(&fakeSubscriptionRepo{}, &fakeEnqueuer{}, zap.NewNop())
		assert.Empty(t, fanout.EventTypes())
	})
}
