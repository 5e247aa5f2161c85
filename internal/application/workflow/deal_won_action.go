package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/trade"
	"github.com/stockcore/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// EventDealWon is raised by the CRM when a deal closes as won
const EventDealWon = "deal.won"

// DealWonAction reacts to a won deal: it pre-fills a draft quote from
// the deal and opens a project kickoff task.
type DealWonAction struct {
	quoteRepo trade.QuoteRepository
	taskRepo  workflow.TaskRepository
	logger    *zap.Logger
}

// NewDealWonAction creates a new DealWonAction
func NewDealWonAction(quoteRepo trade.QuoteRepository, taskRepo workflow.TaskRepository, logger *zap.Logger) *DealWonAction {
	return &DealWonAction{
		quoteRepo: quoteRepo,
		taskRepo:  taskRepo,
		logger:    logger,
	}
}

// EventName returns the event this action reacts to
func (a *DealWonAction) EventName() string {
	return EventDealWon
}

// Execute creates the draft quote and the kickoff task
func (a *DealWonAction) Execute(ctx context.Context, tenantID uuid.UUID, payload map[string]any) error {
	dealName := payloadString(payload, "deal_name")
	if dealName == "" {
		dealName = "won deal"
	}
	reference := payloadString(payload, "deal_reference")
	if reference == "" {
		reference = payloadString(payload, "deal_id")
	}
	amount := payloadDecimal(payload, "amount")

	quote, err := trade.NewDraftQuote(tenantID, fmt.Sprintf("Q-%s", reference),
		fmt.Sprintf("Quote for %s", dealName), amount)
	if err != nil {
		return err
	}
	if dealID, ok := payloadUUID(payload, "deal_id"); ok {
		quote.ForDeal(dealID)
	}
	if contactID, ok := payloadUUID(payload, "contact_id"); ok {
		quote.ForContact(contactID)
	}
	if err := a.quoteRepo.Save(ctx, quote); err != nil {
		return fmt.Errorf("saving draft quote: %w", err)
	}

	task, err := workflow.NewTask(tenantID, workflow.TaskKindKickoff,
		fmt.Sprintf("Kick off project for %s", dealName))
	if err != nil {
		return err
	}
	task.WithPriority(workflow.TaskPriorityHigh).WithReference(reference)
	if err := a.taskRepo.Save(ctx, task); err != nil {
		return fmt.Errorf("saving kickoff task: %w", err)
	}

	a.logger.Info("deal won automation completed",
		zap.String("deal_reference", reference),
		zap.String("quote_reference", quote.Reference),
	)
	return nil
}

var _ Action = (*DealWonAction)(nil)
