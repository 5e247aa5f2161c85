package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
)

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	// FindByIDForTenant finds a task by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)

	// FindAllForTenant finds all tasks for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Task, error)

	// ExistsOpenByKindAndReference reports whether an open task of the given
	// kind already references the document. Automations use this to avoid
	// creating duplicate work items on repeated checks.
	ExistsOpenByKindAndReference(ctx context.Context, tenantID uuid.UUID, kind TaskKind, reference string) (bool, error)

	// Save creates or updates a task
	Save(ctx context.Context, task *Task) error
}
