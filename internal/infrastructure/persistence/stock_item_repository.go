package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByIDForTenant finds a stock item by ID within a tenant
func (r *GormStockItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByReference finds a stock item by its reference code within a tenant
func (r *GormStockItemRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForTenant finds all stock items for a tenant
func (r *GormStockItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockItem{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowThreshold finds items currently breaching their reorder threshold
func (r *GormStockItemRepository) FindBelowThreshold(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockItem{}).
			Where("tenant_id = ? AND reorder_threshold > 0 AND quantity < reorder_threshold", tenantID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForTenant counts stock items for a tenant
func (r *GormStockItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&stock.StockItem{}).
		Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		query = r.applySearch(query, filter.Search)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock saves with optimistic locking. The item's version must be
// the one loaded from the database; the update bumps it in one step.
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *stock.StockItem) error {
	loadedVersion := item.Version
	item.IncrementVersion()

	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, loadedVersion).
		Updates(map[string]interface{}{
			"name":              item.Name,
			"quantity":          item.Quantity,
			"unit_value":        item.UnitValue,
			"reorder_threshold": item.ReorderThreshold,
			"supplier_id":       item.SupplierID,
			"category_id":       item.CategoryID,
			"version":           item.Version,
			"updated_at":        item.UpdatedAt,
		})

	if result.Error != nil {
		item.Version = loadedVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		item.Version = loadedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant deletes a stock item within a tenant
func (r *GormStockItemRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&stock.StockItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormStockItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = r.applySearch(query, filter.Search)
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
	return query
}

func (r *GormStockItemRepository) applySearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + search + "%"
	return query.Where("reference ILIKE ? OR name ILIKE ?", pattern, pattern)
}

// Ensure GormStockItemRepository implements StockItemRepository
var _ stock.StockItemRepository = (*GormStockItemRepository)(nil)
