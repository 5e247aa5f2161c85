package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// StockItemService handles stock item management. Direct edits never
// change quantities: an initial quantity is realized as a synthetic
// Reception movement and later corrections go through Inventory
// movements.
type StockItemService struct {
	itemRepo        stock.StockItemRepository
	movementService *MovementService
	replenishment   ReplenishmentChecker
	logger          *zap.Logger
}

// NewStockItemService creates a new StockItemService
func NewStockItemService(
	itemRepo stock.StockItemRepository,
	movementService *MovementService,
	logger *zap.Logger,
) *StockItemService {
	return &StockItemService{
		itemRepo:        itemRepo,
		movementService: movementService,
		logger:          logger,
	}
}

// SetReplenishmentChecker wires the post-update replenishment check
func (s *StockItemService) SetReplenishmentChecker(checker ReplenishmentChecker) {
	s.replenishment = checker
}

// Create creates a stock item. The item starts with quantity zero; a
// requested initial quantity is applied through a validated synthetic
// Reception movement so the moving-average value is seeded correctly.
func (s *StockItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateStockItemRequest) (*StockItemResponse, error) {
	item, err := stock.NewStockItem(tenantID, req.Reference, req.Name)
	if err != nil {
		return nil, err
	}
	if err := item.SetReorderThreshold(req.ReorderThreshold); err != nil {
		return nil, err
	}
	supplierID, err := parseOptionalUUID(req.SupplierID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID is not a valid UUID")
	}
	if supplierID != nil {
		item.AssignSupplier(*supplierID)
	}
	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID is not a valid UUID")
	}
	item.CategoryID = categoryID

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if req.InitialQuantity.GreaterThan(decimal.Zero) {
		if err := s.applyInitialQuantity(ctx, tenantID, item, req.InitialQuantity, req.InitialUnitPrice); err != nil {
			return nil, err
		}
		// Reload to pick up the quantity and value written by validation
		item, err = s.itemRepo.FindByIDForTenant(ctx, tenantID, item.ID)
		if err != nil {
			return nil, err
		}
	}

	return NewStockItemResponse(item), nil
}

// applyInitialQuantity seeds a new item's quantity through a validated
// Reception movement
func (s *StockItemService) applyInitialQuantity(ctx context.Context, tenantID uuid.UUID, item *stock.StockItem, quantity, unitPrice decimal.Decimal) error {
	movement, err := stock.NewStockMovement(tenantID, stock.MovementTypeReception, fmt.Sprintf("INIT-%s", item.Reference))
	if err != nil {
		return err
	}
	if err := movement.AddLine(item.ID, quantity, unitPrice, "Initial stock"); err != nil {
		return err
	}
	if err := s.movementService.movementRepo.Save(ctx, movement); err != nil {
		return err
	}
	_, err = s.movementService.Validate(ctx, tenantID, movement.ID)
	return err
}

// GetByID retrieves a stock item by ID
func (s *StockItemService) GetByID(ctx context.Context, tenantID, itemID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	return NewStockItemResponse(item), nil
}

// List retrieves stock items for a tenant
func (s *StockItemService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[StockItemResponse], error) {
	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[StockItemResponse]{}, err
	}
	total, err := s.itemRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[StockItemResponse]{}, err
	}

	responses := make([]StockItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *NewStockItemResponse(&items[i]))
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize), nil
}

// ListBelowThreshold retrieves items currently breaching their reorder
// threshold
func (s *StockItemService) ListBelowThreshold(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockItemResponse, error) {
	items, err := s.itemRepo.FindBelowThreshold(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]StockItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *NewStockItemResponse(&items[i]))
	}
	return responses, nil
}

// Delete removes a stock item
func (s *StockItemService) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	return s.itemRepo.DeleteForTenant(ctx, tenantID, itemID)
}

// Update edits a stock item's descriptive fields and threshold. The
// replenishment engine is re-evaluated afterwards: lowering a quantity
// is impossible here, but raising the threshold can create a breach.
func (s *StockItemService) Update(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateStockItemRequest) (*StockItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Stock item name cannot be empty")
		}
		item.Name = *req.Name
		item.Touch()
	}
	if req.ReorderThreshold != nil {
		if err := item.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}
	if req.SupplierID != nil {
		supplierID, err := parseOptionalUUID(*req.SupplierID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID is not a valid UUID")
		}
		if supplierID != nil {
			item.AssignSupplier(*supplierID)
		} else {
			item.SupplierID = nil
		}
	}

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}

	if s.replenishment != nil {
		if err := s.replenishment.Check(ctx, tenantID, item.ID); err != nil {
			s.logger.Error("replenishment check failed after item update",
				zap.String("stock_item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}

	return NewStockItemResponse(item), nil
}
