package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
)

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// Quote represents a commercial quote. The deal-won automation
// pre-fills a draft quote from the winning deal so sales can send it
// without re-entering the numbers.
type Quote struct {
	shared.TenantAggregateRoot
	Reference string          `gorm:"type:varchar(100);not null;index"`
	Title     string          `gorm:"type:varchar(255);not null"`
	ContactID *uuid.UUID      `gorm:"type:uuid;index"`
	DealID    *uuid.UUID      `gorm:"type:uuid;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status    QuoteStatus     `gorm:"type:varchar(20);not null;index;default:DRAFT"`
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewDraftQuote creates a draft quote pre-filled from a deal
func NewDraftQuote(tenantID uuid.UUID, reference, title string, amount decimal.Decimal) (*Quote, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Quote reference cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Quote title cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Quote amount cannot be negative")
	}
	return &Quote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		Title:               title,
		Amount:              amount,
		Status:              QuoteStatusDraft,
	}, nil
}

// ForDeal links the quote to the deal it was generated from
func (q *Quote) ForDeal(dealID uuid.UUID) *Quote {
	q.DealID = &dealID
	return q
}

// ForContact links the quote to the receiving contact
func (q *Quote) ForContact(contactID uuid.UUID) *Quote {
	q.ContactID = &contactID
	return q
}
