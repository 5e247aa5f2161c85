package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypeReception represents stock coming in from a supplier
	MovementTypeReception MovementType = "RECEPTION"
	// MovementTypeIssue represents stock leaving (sale, consumption)
	MovementTypeIssue MovementType = "ISSUE"
	// MovementTypeInventory represents a reconciliation against a physical count
	MovementTypeInventory MovementType = "INVENTORY"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReception, MovementTypeIssue, MovementTypeInventory:
		return true
	}
	return false
}

// MovementStatus represents the lifecycle state of a movement
type MovementStatus string

const (
	// MovementStatusDraft is the initial, editable state
	MovementStatusDraft MovementStatus = "DRAFT"
	// MovementStatusValidated is terminal: the movement has been applied to the ledger
	MovementStatusValidated MovementStatus = "VALIDATED"
)

// MovementLine is a single line of a stock movement
type MovementLine struct {
	shared.BaseEntity
	MovementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (MovementLine) TableName() string {
	return "stock_movement_lines"
}

// LineTotal returns quantity * unit price
func (l *MovementLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// StockMovement is the aggregate root for a draft-then-validated stock
// movement. Movements are the only mechanism that mutates stock item
// quantities; validation applies all lines atomically and is terminal.
type StockMovement struct {
	shared.TenantAggregateRoot
	Type        MovementType   `gorm:"type:varchar(20);not null;index"`
	Status      MovementStatus `gorm:"type:varchar(20);not null;index;default:DRAFT"`
	Reference   string         `gorm:"type:varchar(100);not null;index"`
	PartnerID   *uuid.UUID     `gorm:"type:uuid;index"` // Supplier or contact, depending on type
	PartnerName string         `gorm:"type:varchar(255)"`

	Lines []MovementLine `gorm:"foreignKey:MovementID;references:ID"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a draft movement with the given lines
func NewStockMovement(tenantID uuid.UUID, movementType MovementType, reference string) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Movement reference cannot be empty")
	}

	return &StockMovement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                movementType,
		Status:              MovementStatusDraft,
		Reference:           reference,
		Lines:               make([]MovementLine, 0),
	}, nil
}

// SetPartner records the counterparty of the movement
func (m *StockMovement) SetPartner(partnerID uuid.UUID, partnerName string) {
	m.PartnerID = &partnerID
	m.PartnerName = partnerName
	m.Touch()
}

// AddLine appends a line to a draft movement
func (m *StockMovement) AddLine(stockItemID uuid.UUID, quantity, unitPrice decimal.Decimal, description string) error {
	if m.Status != MovementStatusDraft {
		return shared.ErrInvalidState
	}
	if stockItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID cannot be empty")
	}
	if quantity.IsNegative() || (quantity.IsZero() && m.Type != MovementTypeInventory) {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line unit price cannot be negative")
	}

	m.Lines = append(m.Lines, MovementLine{
		BaseEntity:  shared.NewBaseEntity(),
		MovementID:  m.ID,
		StockItemID: stockItemID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Description: description,
	})
	m.Touch()
	return nil
}

// IsValidated returns true once the movement has been applied to the ledger
func (m *StockMovement) IsValidated() bool {
	return m.Status == MovementStatusValidated
}

// MarkValidated transitions the movement to its terminal state. The
// transition happens at most once; the caller must short-circuit
// re-validation before applying any ledger mutation.
func (m *StockMovement) MarkValidated() error {
	if m.Status == MovementStatusValidated {
		return shared.ErrInvalidState
	}
	if len(m.Lines) == 0 {
		return shared.NewDomainError("EMPTY_MOVEMENT", "Cannot validate a movement without lines")
	}
	m.Status = MovementStatusValidated
	m.Touch()
	m.IncrementVersion()

	if m.Type == MovementTypeReception {
		m.AddDomainEvent(NewStockReceivedEvent(m))
	}
	return nil
}

// AffectedItemIDs returns the distinct stock item IDs referenced by the lines
func (m *StockMovement) AffectedItemIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(m.Lines))
	ids := make([]uuid.UUID, 0, len(m.Lines))
	for _, line := range m.Lines {
		if !seen[line.StockItemID] {
			seen[line.StockItemID] = true
			ids = append(ids, line.StockItemID)
		}
	}
	return ids
}

// LinesForItem returns the movement lines referencing the given stock item,
// in declaration order
func (m *StockMovement) LinesForItem(stockItemID uuid.UUID) []MovementLine {
	lines := make([]MovementLine, 0)
	for _, line := range m.Lines {
		if line.StockItemID == stockItemID {
			lines = append(lines, line)
		}
	}
	return lines
}
