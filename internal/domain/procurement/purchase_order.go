package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// Reference prefixes. Auto-replenishment orders are distinguishable from
// manually created ones by their prefix.
const (
	ManualOrderPrefix = "PO"
	AutoOrderPrefix   = "APO"
)

// AutoOrderReference builds the reference for a system-generated order
func AutoOrderReference(generatedAt time.Time, supplierID uuid.UUID) string {
	short := supplierID.String()[:8]
	return fmt.Sprintf("%s-%s-%s", AutoOrderPrefix, generatedAt.Format("20060102-150405"), short)
}

// PurchaseOrderLine represents a line item in a purchase order
type PurchaseOrderLine struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// PurchaseOrder is the aggregate root for supplier orders. The
// replenishment engine creates Draft orders with an auto reference; a
// Draft order is reused for further breaches of the same supplier's
// items until a human confirms or cancels it.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Reference   string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_po_tenant_ref,priority:2"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;index;default:DRAFT"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	AutoCreated bool                `gorm:"not null;default:false"`
	GeneratedAt *time.Time          `gorm:"type:timestamptz"`

	Lines []PurchaseOrderLine `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a manually authored draft order
func NewPurchaseOrder(tenantID, supplierID uuid.UUID, reference string) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Order reference cannot be empty")
	}

	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		Status:              PurchaseOrderStatusDraft,
		SupplierID:          supplierID,
		TotalAmount:         decimal.Zero,
		Lines:               make([]PurchaseOrderLine, 0),
	}, nil
}

// NewAutoPurchaseOrder creates a draft order generated by the
// replenishment engine, stamped with its generation time
func NewAutoPurchaseOrder(tenantID, supplierID uuid.UUID) (*PurchaseOrder, error) {
	now := time.Now()
	order, err := NewPurchaseOrder(tenantID, supplierID, AutoOrderReference(now, supplierID))
	if err != nil {
		return nil, err
	}
	order.AutoCreated = true
	order.GeneratedAt = &now
	return order, nil
}

// IsDraft returns true while the order can still be amended
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// HasLineForItem returns true when the order already carries a line for
// the given stock item
func (o *PurchaseOrder) HasLineForItem(stockItemID uuid.UUID) bool {
	for _, line := range o.Lines {
		if line.StockItemID == stockItemID {
			return true
		}
	}
	return false
}

// AddLine appends a line to a draft order and increments the total.
// At most one line per stock item is allowed.
func (o *PurchaseOrder) AddLine(stockItemID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if !o.IsDraft() {
		return shared.ErrInvalidState
	}
	if stockItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line unit price cannot be negative")
	}
	if o.HasLineForItem(stockItemID) {
		return shared.ErrAlreadyExists
	}

	lineTotal := quantity.Mul(unitPrice)
	o.Lines = append(o.Lines, PurchaseOrderLine{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     o.ID,
		StockItemID: stockItemID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   lineTotal,
	})
	o.TotalAmount = o.TotalAmount.Add(lineTotal)
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Confirm moves a draft order to Confirmed
func (o *PurchaseOrder) Confirm() error {
	if !o.IsDraft() {
		return shared.ErrInvalidState
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order without lines")
	}
	o.Status = PurchaseOrderStatusConfirmed
	o.Touch()
	o.IncrementVersion()
	return nil
}
