package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/workflow"
)

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        string     `json:"kind"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Reference   string     `json:"reference,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskResponse builds the API representation of a task
func NewTaskResponse(task *workflow.Task) *TaskResponse {
	resp := &TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Kind:        string(task.Kind),
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Reference:   task.Reference,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.AssigneeID != nil {
		assignee := task.AssigneeID.String()
		resp.AssigneeID = &assignee
	}
	return resp
}

// TaskService exposes the work items created by the automations
type TaskService struct {
	taskRepo workflow.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo workflow.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// List retrieves tasks for a tenant
func (s *TaskService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]TaskResponse, error) {
	tasks, err := s.taskRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, *NewTaskResponse(&tasks[i]))
	}
	return responses, nil
}

// Complete marks a task as done
func (s *TaskService) Complete(ctx context.Context, tenantID, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if err := task.Complete(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return NewTaskResponse(task), nil
}
