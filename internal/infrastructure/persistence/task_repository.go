package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/workflow"
	"gorm.io/gorm"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByIDForTenant finds a task by ID within a tenant
func (r *GormTaskRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*workflow.Task, error) {
	var task workflow.Task
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindAllForTenant finds all tasks for a tenant
func (r *GormTaskRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]workflow.Task, error) {
	var tasks []workflow.Task
	query := r.db.WithContext(ctx).Model(&workflow.Task{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR reference ILIKE ?", pattern, pattern)
	}

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ExistsOpenByKindAndReference reports whether an open task of the given
// kind already references the document
func (r *GormTaskRepository) ExistsOpenByKindAndReference(ctx context.Context, tenantID uuid.UUID, kind workflow.TaskKind, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&workflow.Task{}).
		Where("tenant_id = ? AND kind = ? AND reference = ? AND status = ?",
			tenantID, kind, reference, workflow.TaskStatusOpen).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *workflow.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Ensure GormTaskRepository implements TaskRepository
var _ workflow.TaskRepository = (*GormTaskRepository)(nil)
