package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
)

// StockItem is the aggregate root for the stock ledger. It carries the
// current on-hand quantity and the moving-average unit value of one
// tracked reference for a tenant.
type StockItem struct {
	shared.TenantAggregateRoot
	Reference        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_stock_item_tenant_ref,priority:2"`
	Name             string          `gorm:"type:varchar(255);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand quantity
	UnitValue        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Moving weighted average cost
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Low-stock threshold
	SupplierID       *uuid.UUID      `gorm:"type:uuid;index"`
	CategoryID       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock item. Items always start empty: an
// initial quantity must be realized as a Reception movement so the
// moving-average value stays consistent.
func NewStockItem(tenantID uuid.UUID, reference, name string) (*StockItem, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Stock item reference cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Stock item name cannot be empty")
	}

	return &StockItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		Name:                name,
		Quantity:            decimal.Zero,
		UnitValue:           decimal.Zero,
		ReorderThreshold:    decimal.Zero,
	}, nil
}

// InsufficientStockError is returned when an issue line asks for more
// than the item currently holds. The enclosing movement validation must
// abort entirely when it occurs.
type InsufficientStockError struct {
	StockItemID uuid.UUID
	Reference   string
	Required    decimal.Decimal
	Available   decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: required %s, available %s",
		e.Reference, e.Required.String(), e.Available.String())
}

// Code returns the domain error code
func (e *InsufficientStockError) Code() string {
	return shared.ErrInsufficientStock.Code
}

// ApplyReception applies reception lines to the item: quantity increases
// by the sum of line quantities and the unit value is recomputed as a
// moving weighted average. With a zero denominator the value is kept.
func (i *StockItem) ApplyReception(lines []MovementLine) error {
	received := decimal.Zero
	receivedValue := decimal.Zero
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Reception line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Reception line unit price cannot be negative")
		}
		received = received.Add(line.Quantity)
		receivedValue = receivedValue.Add(line.Quantity.Mul(line.UnitPrice))
	}

	denominator := i.Quantity.Add(received)
	if !denominator.IsZero() {
		totalValue := i.Quantity.Mul(i.UnitValue).Add(receivedValue)
		i.UnitValue = totalValue.Div(denominator).Round(4)
	}

	i.Quantity = i.Quantity.Add(received)
	i.Touch()
	return nil
}

// ApplyIssue applies issue lines to the item, decreasing quantity. Lines
// are applied in order; the first line that would drive quantity negative
// fails with InsufficientStockError and the caller must roll back the
// whole movement. The unit value is not affected by issues.
func (i *StockItem) ApplyIssue(lines []MovementLine) error {
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Issue line quantity must be positive")
		}
		if line.Quantity.GreaterThan(i.Quantity) {
			return &InsufficientStockError{
				StockItemID: i.ID,
				Reference:   i.Reference,
				Required:    line.Quantity,
				Available:   i.Quantity,
			}
		}
		i.Quantity = i.Quantity.Sub(line.Quantity)
	}
	i.Touch()
	return nil
}

// ApplyInventory reconciles the item against a counted quantity: the
// line's quantity replaces the on-hand quantity directly. The unit value
// is left untouched.
func (i *StockItem) ApplyInventory(line MovementLine) error {
	if line.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	i.Quantity = line.Quantity
	i.Touch()
	return nil
}

// SetReorderThreshold sets the low-stock threshold
func (i *StockItem) SetReorderThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Reorder threshold cannot be negative")
	}
	i.ReorderThreshold = threshold
	i.Touch()
	return nil
}

// AssignSupplier links the item to its replenishment supplier
func (i *StockItem) AssignSupplier(supplierID uuid.UUID) {
	i.SupplierID = &supplierID
	i.Touch()
}

// IsBelowThreshold returns true when the item breaches its reorder threshold
func (i *StockItem) IsBelowThreshold() bool {
	return i.Quantity.LessThan(i.ReorderThreshold)
}

// HasSupplier returns true when a replenishment supplier is assigned
func (i *StockItem) HasSupplier() bool {
	return i.SupplierID != nil && *i.SupplierID != uuid.Nil
}

// TotalValue returns the current ledger value (quantity * unit value)
func (i *StockItem) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitValue)
}

// Snapshot captures the item's ledger state for audit records
func (i *StockItem) Snapshot() map[string]any {
	return map[string]any{
		"id":         i.ID.String(),
		"reference":  i.Reference,
		"quantity":   i.Quantity.String(),
		"unit_value": i.UnitValue.String(),
		"updated_at": i.UpdatedAt.Format(time.RFC3339),
	}
}
