package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// StockItemRepository defines the interface for stock item persistence
type StockItemRepository interface {
	// FindByIDForTenant finds a stock item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockItem, error)

	// FindByReference finds a stock item by its reference code within a tenant
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*StockItem, error)

	// FindAllForTenant finds all stock items for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// FindBelowThreshold finds items currently breaching their reorder threshold
	FindBelowThreshold(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// CountForTenant counts stock items for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a stock item
	Save(ctx context.Context, item *StockItem) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, item *StockItem) error

	// DeleteForTenant deletes a stock item within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockMovementRepository defines the interface for stock movement persistence
type StockMovementRepository interface {
	// FindByIDForTenant finds a movement (with lines) by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockMovement, error)

	// FindAllForTenant finds all movements for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// CountForTenant counts movements for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a movement and its lines
	Save(ctx context.Context, movement *StockMovement) error
}
