package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/partner"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// EventInvoiceOverdue is raised by the finance health check when an
// invoice passes its due date unpaid
const EventInvoiceOverdue = "invoice.overdue"

// InvoiceOverdueAction reacts to an overdue invoice: it opens a
// collection task and marks the linked contact at risk. Health checks
// run repeatedly, so an open collection task for the same invoice
// reference suppresses a duplicate.
type InvoiceOverdueAction struct {
	taskRepo    workflow.TaskRepository
	contactRepo partner.ContactRepository
	logger      *zap.Logger
}

// NewInvoiceOverdueAction creates a new InvoiceOverdueAction
func NewInvoiceOverdueAction(taskRepo workflow.TaskRepository, contactRepo partner.ContactRepository, logger *zap.Logger) *InvoiceOverdueAction {
	return &InvoiceOverdueAction{
		taskRepo:    taskRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// EventName returns the event this action reacts to
func (a *InvoiceOverdueAction) EventName() string {
	return EventInvoiceOverdue
}

// Execute creates the collection task (once per invoice) and flags the contact
func (a *InvoiceOverdueAction) Execute(ctx context.Context, tenantID uuid.UUID, payload map[string]any) error {
	invoiceRef := payloadString(payload, "invoice_reference")
	if invoiceRef == "" {
		return shared.NewDomainError("INVALID_PAYLOAD", "invoice.overdue payload is missing invoice_reference")
	}

	exists, err := a.taskRepo.ExistsOpenByKindAndReference(ctx, tenantID, workflow.TaskKindCollection, invoiceRef)
	if err != nil {
		return err
	}
	if exists {
		a.logger.Debug("collection task already open",
			zap.String("invoice_reference", invoiceRef),
		)
		return nil
	}

	task, err := workflow.NewTask(tenantID, workflow.TaskKindCollection,
		fmt.Sprintf("Collect payment for invoice %s", invoiceRef))
	if err != nil {
		return err
	}
	task.WithPriority(workflow.TaskPriorityHigh).WithReference(invoiceRef)
	if amount := payloadDecimal(payload, "amount_due"); !amount.IsZero() {
		task.WithDescription(fmt.Sprintf("Amount due: %s", amount.String()))
	}
	if err := a.taskRepo.Save(ctx, task); err != nil {
		return fmt.Errorf("saving collection task: %w", err)
	}

	if contactID, ok := payloadUUID(payload, "contact_id"); ok {
		if err := a.markContactAtRisk(ctx, tenantID, contactID); err != nil {
			// The collection task is already open; a failed status flip
			// should not fail the automation.
			a.logger.Error("marking contact at risk failed",
				zap.String("contact_id", contactID.String()),
				zap.Error(err),
			)
		}
	}

	a.logger.Info("collection task opened",
		zap.String("invoice_reference", invoiceRef),
	)
	return nil
}

func (a *InvoiceOverdueAction) markContactAtRisk(ctx context.Context, tenantID, contactID uuid.UUID) error {
	contact, err := a.contactRepo.FindByIDForTenant(ctx, tenantID, contactID)
	if err != nil {
		return err
	}
	contact.MarkAtRisk()
	return a.contactRepo.Save(ctx, contact)
}

var _ Action = (*InvoiceOverdueAction)(nil)
