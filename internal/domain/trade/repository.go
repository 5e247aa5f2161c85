package trade

import (
	"context"

	"github.com/google/uuid"
)

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByIDForTenant finds a quote by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Quote, error)

	// Save creates or updates a quote
	Save(ctx context.Context, quote *Quote) error
}
