package webhook

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/stockcore/backend/internal/domain/shared"
)

func TestSubscriptionMatches(t *testing.T) {
	newSubscription := func(active bool, events ...string) *Subscription {
		return &Subscription{
			TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
			URL:                 "https://hooks.example.com/stock",
			Events:              events,
			Active:              active,
		}
	}

	t.Run("matches a listed event", func(t *testing.T) {
		sub := newSubscription(true, "deal.won", "stock.low")
		assert.True(t, sub.Matches("stock.low"))
		assert.False(t, sub.Matches("invoice.overdue"))
	})

	t.Run("empty event list matches everything", func(t *testing.T) {
		sub := newSubscription(true)
		assert.True(t, sub.Matches("deal.won"))
		assert.True(t, sub.Matches("employee.created"))
	})

	t.Run("inactive subscription matches nothing", func(t *testing.T) {
		sub := newSubscription(false, "deal.won")
		assert.False(t, sub.Matches("deal.won"))
	})
}
