package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByIDForTenant finds a quote by ID within a tenant
func (r *GormQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Quote, error) {
	var quote trade.Quote
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// Save creates or updates a quote
func (r *GormQuoteRepository) Save(ctx context.Context, quote *trade.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// Ensure GormQuoteRepository implements QuoteRepository
var _ trade.QuoteRepository = (*GormQuoteRepository)(nil)
