package webhook

import (
	"github.com/stockcore/backend/internal/domain/shared"
)

// Subscription is a tenant-registered webhook endpoint. The core treats
// subscriptions as read-only configuration: they are managed elsewhere
// and consulted here to fan domain events out to external systems.
type Subscription struct {
	shared.TenantAggregateRoot
	URL    string   `gorm:"type:varchar(2048);not null"`
	Secret string   `gorm:"type:varchar(255)"` // HMAC signing secret, optional
	Events []string `gorm:"serializer:json;type:jsonb"`
	Active bool     `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "webhook_subscriptions"
}

// Matches reports whether the subscription wants the given event name.
// An empty event list subscribes to everything.
func (s *Subscription) Matches(eventName string) bool {
	if !s.Active {
		return false
	}
	if len(s.Events) == 0 {
		return true
	}
	for _, name := range s.Events {
		if name == eventName {
			return true
		}
	}
	return false
}
