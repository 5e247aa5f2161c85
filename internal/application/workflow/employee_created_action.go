package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// EventEmployeeCreated is raised by HR when a new hire is recorded
const EventEmployeeCreated = "employee.created"

// onboardingChecklist is the fixed set of tasks opened for every new hire
var onboardingChecklist = []string{
	"Prepare workstation and accounts",
	"Schedule orientation session",
	"Collect signed contract and documents",
	"Assign onboarding buddy",
}

// EmployeeCreatedAction reacts to a new hire by creating their
// onboarding checklist, assigned to the employee.
type EmployeeCreatedAction struct {
	taskRepo workflow.TaskRepository
	logger   *zap.Logger
}

// NewEmployeeCreatedAction creates a new EmployeeCreatedAction
func NewEmployeeCreatedAction(taskRepo workflow.TaskRepository, logger *zap.Logger) *EmployeeCreatedAction {
	return &EmployeeCreatedAction{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// EventName returns the event this action reacts to
func (a *EmployeeCreatedAction) EventName() string {
	return EventEmployeeCreated
}

// Execute opens the onboarding checklist for the new hire
func (a *EmployeeCreatedAction) Execute(ctx context.Context, tenantID uuid.UUID, payload map[string]any) error {
	employeeID, ok := payloadUUID(payload, "employee_id")
	if !ok {
		return shared.NewDomainError("INVALID_PAYLOAD", "employee.created payload is missing employee_id")
	}
	employeeName := payloadString(payload, "employee_name")
	if employeeName == "" {
		employeeName = "new hire"
	}

	for _, title := range onboardingChecklist {
		task, err := workflow.NewTask(tenantID, workflow.TaskKindOnboarding,
			fmt.Sprintf("%s (%s)", title, employeeName))
		if err != nil {
			return err
		}
		task.WithAssignee(employeeID).WithReference(employeeID.String())
		if err := a.taskRepo.Save(ctx, task); err != nil {
			return fmt.Errorf("saving onboarding task %q: %w", title, err)
		}
	}

	a.logger.Info("onboarding checklist created",
		zap.String("employee_id", employeeID.String()),
		zap.Int("tasks", len(onboardingChecklist)),
	)
	return nil
}

var _ Action = (*EmployeeCreatedAction)(nil)
