package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/webhook"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindActiveByEvent finds the active subscriptions of a tenant that
// subscribe to the given event name. Event lists are stored as JSON, so
// matching happens in memory after loading the tenant's active rows.
func (r *GormSubscriptionRepository) FindActiveByEvent(ctx context.Context, tenantID uuid.UUID, eventName string) ([]webhook.Subscription, error) {
	var subscriptions []webhook.Subscription
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	matched := make([]webhook.Subscription, 0, len(subscriptions))
	for _, sub := range subscriptions {
		if sub.Matches(eventName) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// Ensure GormSubscriptionRepository implements SubscriptionRepository
var _ webhook.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
