package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByIDForTenant finds a supplier by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByIDForTenant finds a contact by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contact, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *Contact) error
}
