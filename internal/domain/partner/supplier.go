package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents a goods supplier. Reception movements reference a
// supplier as their partner, and the replenishment engine targets auto
// purchase orders at the item's supplier.
type Supplier struct {
	shared.TenantAggregateRoot
	Code        string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name        string         `gorm:"type:varchar(200);not null"`
	Status      SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string         `gorm:"type:varchar(100)"`
	Phone       string         `gorm:"type:varchar(50)"`
	Email       string         `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(tenantID uuid.UUID, code, name string) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}

	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              SupplierStatusActive,
	}, nil
}

// IsActive returns true while the supplier can be used on new documents
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
