package webhook

import (
	"context"

	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/webhook"
	"go.uber.org/zap"
)

// Enqueuer accepts webhook jobs for asynchronous delivery
type Enqueuer interface {
	// Enqueue appends a delivery job to the queue tail. The secret may
	// be empty for unsigned endpoints.
	Enqueue(url, event string, payload map[string]any, secret string)
}

// Fanout subscribes to all domain events and enqueues one delivery job
// per active matching subscription. Filtering happens here, before
// enqueueing: the queue itself never consults subscriptions.
type Fanout struct {
	subscriptions webhook.SubscriptionRepository
	queue         Enqueuer
	logger        *zap.Logger
}

// NewFanout creates a new Fanout
func NewFanout(subscriptions webhook.SubscriptionRepository, queue Enqueuer, logger *zap.Logger) *Fanout {
	return &Fanout{
		subscriptions: subscriptions,
		queue:         queue,
		logger:        logger,
	}
}

// EventTypes returns an empty slice: the fanout receives all events
func (f *Fanout) EventTypes() []string {
	return nil
}

// Handle fans one domain event out to the tenant's subscribed endpoints
func (f *Fanout) Handle(ctx context.Context, event shared.DomainEvent) error {
	subs, err := f.subscriptions.FindActiveByEvent(ctx, event.TenantID(), event.EventType())
	if err != nil {
		// Webhooks are best-effort: a lookup failure must not bubble up
		// into the event bus.
		f.logger.Error("loading webhook subscriptions failed",
			zap.String("event", event.EventType()),
			zap.Error(err),
		)
		return nil
	}

	for _, sub := range subs {
		f.queue.Enqueue(sub.URL, event.EventType(), event.Payload(), sub.Secret)
	}
	if len(subs) > 0 {
		f.logger.Debug("webhook deliveries enqueued",
			zap.String("event", event.EventType()),
			zap.Int("subscriptions", len(subs)),
		)
	}
	return nil
}

var _ shared.EventHandler = (*Fanout)(nil)
