package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// TaskKind classifies what automation created the task
type TaskKind string

const (
	// TaskKindReview asks a human to approve an auto-generated purchase order
	TaskKindReview TaskKind = "review"
	// TaskKindCollection asks a human to chase an overdue invoice
	TaskKindCollection TaskKind = "collection"
	// TaskKindOnboarding is part of a new hire's checklist
	TaskKindOnboarding TaskKind = "onboarding"
	// TaskKindKickoff starts project work after a deal is won
	TaskKindKickoff TaskKind = "kickoff"
)

// Task represents a human work item created by workflow automation
type Task struct {
	shared.TenantAggregateRoot
	Title       string       `gorm:"type:varchar(255);not null"`
	Description string       `gorm:"type:text"`
	Kind        TaskKind     `gorm:"type:varchar(20);not null;index"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'"`
	Status      TaskStatus   `gorm:"type:varchar(10);not null;index;default:'open'"`
	Reference   string       `gorm:"type:varchar(100);index"` // Document the task is about (order, invoice, ...)
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;index"`
	DueDate     *time.Time   `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates an open task
func NewTask(tenantID uuid.UUID, kind TaskKind, title string) (*Task, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	return &Task{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Title:               title,
		Kind:                kind,
		Priority:            TaskPriorityMedium,
		Status:              TaskStatusOpen,
	}, nil
}

// WithPriority sets the task priority
func (t *Task) WithPriority(priority TaskPriority) *Task {
	t.Priority = priority
	return t
}

// WithReference links the task to a business document
func (t *Task) WithReference(reference string) *Task {
	t.Reference = reference
	return t
}

// WithAssignee assigns the task to a user
func (t *Task) WithAssignee(assigneeID uuid.UUID) *Task {
	t.AssigneeID = &assigneeID
	return t
}

// WithDueDate sets when the task is due
func (t *Task) WithDueDate(due time.Time) *Task {
	t.DueDate = &due
	return t
}

// WithDescription sets the task body
func (t *Task) WithDescription(description string) *Task {
	t.Description = description
	return t
}

// Complete closes the task
func (t *Task) Complete() error {
	if t.Status == TaskStatusDone {
		return shared.ErrInvalidState
	}
	t.Status = TaskStatusDone
	t.Touch()
	t.IncrementVersion()
	return nil
}
