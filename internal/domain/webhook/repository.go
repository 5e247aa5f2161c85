package webhook

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines read access to webhook subscriptions
type SubscriptionRepository interface {
	// FindActiveByEvent finds the active subscriptions of a tenant that
	// subscribe to the given event name
	FindActiveByEvent(ctx context.Context, tenantID uuid.UUID, eventName string) ([]Subscription, error)
}
