package partner

import (
	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// ContactStatus represents the CRM standing of a contact
type ContactStatus string

const (
	ContactStatusActive ContactStatus = "active"
	// ContactStatusAtRisk flags contacts with overdue invoices so that
	// sales follow-up can prioritize them
	ContactStatusAtRisk   ContactStatus = "at_risk"
	ContactStatusInactive ContactStatus = "inactive"
)

// Contact represents a CRM contact. Issue movements reference a contact
// as their partner, and collection automations can mark a contact at risk.
type Contact struct {
	shared.TenantAggregateRoot
	Name   string        `gorm:"type:varchar(200);not null"`
	Email  string        `gorm:"type:varchar(200);index"`
	Phone  string        `gorm:"type:varchar(50)"`
	Status ContactStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact
func NewContact(tenantID uuid.UUID, name string) (*Contact, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Contact name cannot be empty")
	}
	return &Contact{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              ContactStatusActive,
	}, nil
}

// MarkAtRisk flags the contact for collection follow-up. Marking an
// already flagged contact is a no-op.
func (c *Contact) MarkAtRisk() {
	if c.Status == ContactStatusAtRisk {
		return
	}
	c.Status = ContactStatusAtRisk
	c.Touch()
	c.IncrementVersion()
}
