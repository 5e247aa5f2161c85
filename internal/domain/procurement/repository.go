package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant finds an order (with lines) by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindDraftBySupplier finds the open auto-replenishment draft order for
	// a supplier, if one exists. At most one such order exists per
	// (tenant, supplier) pair.
	FindDraftBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (*PurchaseOrder, error)

	// FindAllForTenant finds all orders for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates an order and its lines
	Save(ctx context.Context, order *PurchaseOrder) error
}
