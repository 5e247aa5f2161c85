package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/domain/partner"
	"github.com/stockcore/backend/internal/domain/shared"
	"github.com/stockcore/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// ReplenishmentChecker evaluates an item against its reorder threshold
// after a ledger-mutating operation. Implementations must be safe to
// call outside the validation transaction: failures here are logged and
// never undo the validated movement.
type ReplenishmentChecker interface {
	Check(ctx context.Context, tenantID, stockItemID uuid.UUID) error
}

// AuditRecorder records before/after snapshots of ledger mutations.
// The implementation lives outside the core; movement validation calls
// it best-effort after the transaction commits.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID uuid.UUID, action string, before, after map[string]any)
}

// MovementService drives the movement state machine: it creates draft
// movements and validates them against the stock ledger inside one
// atomic transaction.
type MovementService struct {
	movementRepo  stock.StockMovementRepository
	supplierRepo  partner.SupplierRepository
	contactRepo   partner.ContactRepository
	txScope       TransactionScope
	replenishment ReplenishmentChecker
	publisher     shared.EventPublisher
	audit         AuditRecorder
	logger        *zap.Logger
}

// NewMovementService creates a new MovementService
func NewMovementService(
	movementRepo stock.StockMovementRepository,
	supplierRepo partner.SupplierRepository,
	contactRepo partner.ContactRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		movementRepo: movementRepo,
		supplierRepo: supplierRepo,
		contactRepo:  contactRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetReplenishmentChecker wires the post-validation replenishment check
func (s *MovementService) SetReplenishmentChecker(checker ReplenishmentChecker) {
	s.replenishment = checker
}

// SetEventPublisher wires the domain event publisher
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetAuditRecorder wires the audit recorder
func (s *MovementService) SetAuditRecorder(recorder AuditRecorder) {
	s.audit = recorder
}

// Create creates a draft movement. When the partner name is omitted it
// is resolved from the supplier (receptions) or contact (issues)
// referenced by partner_id.
func (s *MovementService) Create(ctx context.Context, tenantID uuid.UUID, req CreateMovementRequest) (*MovementResponse, error) {
	movement, err := stock.NewStockMovement(tenantID, stock.MovementType(req.Type), req.Reference)
	if err != nil {
		return nil, err
	}

	if req.PartnerID != "" {
		partnerID, err := uuid.Parse(req.PartnerID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID is not a valid UUID")
		}
		partnerName := req.PartnerName
		if partnerName == "" {
			partnerName, err = s.resolvePartnerName(ctx, tenantID, movement.Type, partnerID)
			if err != nil {
				return nil, err
			}
		}
		movement.SetPartner(partnerID, partnerName)
	}

	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.StockItemID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID is not a valid UUID")
		}
		if err := movement.AddLine(itemID, line.Quantity, line.UnitPrice, line.Description); err != nil {
			return nil, err
		}
	}

	if err := s.movementRepo.Save(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Info("movement created",
		zap.String("movement_id", movement.ID.String()),
		zap.String("type", movement.Type.String()),
		zap.String("reference", movement.Reference),
		zap.Int("lines", len(movement.Lines)),
	)
	return NewMovementResponse(movement), nil
}

// GetByID retrieves a movement by ID
func (s *MovementService) GetByID(ctx context.Context, tenantID, movementID uuid.UUID) (*MovementResponse, error) {
	movement, err := s.movementRepo.FindByIDForTenant(ctx, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	return NewMovementResponse(movement), nil
}

// List retrieves movements for a tenant
func (s *MovementService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[MovementResponse], error) {
	movements, err := s.movementRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	total, err := s.movementRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}

	items := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *NewMovementResponse(&movements[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Validate applies a draft movement to the stock ledger atomically and
// transitions it to Validated. Re-validating an already validated
// movement returns its current state without side effects. Any line
// failure aborts the whole transaction: no partial application.
func (s *MovementService) Validate(ctx context.Context, tenantID, movementID uuid.UUID) (*MovementResponse, error) {
	var validated *stock.StockMovement
	var snapshots []itemSnapshot
	alreadyValidated := false

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := repos.MovementRepo().FindByIDForTenant(ctx, tenantID, movementID)
		if err != nil {
			return err
		}
		if movement.IsValidated() {
			// Idempotent short-circuit: no ledger mutation, no events.
			validated = movement
			alreadyValidated = true
			return nil
		}

		for _, itemID := range movement.AffectedItemIDs() {
			item, err := repos.StockItemRepo().FindByIDForTenant(ctx, tenantID, itemID)
			if err != nil {
				return fmt.Errorf("loading stock item %s: %w", itemID, err)
			}

			before := item.Snapshot()
			if err := applyMovementLines(item, movement); err != nil {
				return err
			}
			if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
				return err
			}
			snapshots = append(snapshots, itemSnapshot{before: before, after: item.Snapshot()})
		}

		if err := movement.MarkValidated(); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		validated = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyValidated {
		s.afterValidation(ctx, tenantID, validated, snapshots)
	}
	return NewMovementResponse(validated), nil
}

type itemSnapshot struct {
	before map[string]any
	after  map[string]any
}

// applyMovementLines applies the movement's lines for one item using
// the ledger operation matching the movement type
func applyMovementLines(item *stock.StockItem, movement *stock.StockMovement) error {
	lines := movement.LinesForItem(item.ID)
	switch movement.Type {
	case stock.MovementTypeReception:
		return item.ApplyReception(lines)
	case stock.MovementTypeIssue:
		return item.ApplyIssue(lines)
	case stock.MovementTypeInventory:
		for _, line := range lines {
			if err := item.ApplyInventory(line); err != nil {
				return err
			}
		}
		return nil
	default:
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
}

// afterValidation runs the best-effort automation that follows a
// committed validation: audit snapshots, replenishment checks for every
// affected item, and domain event publication. Failures are logged and
// never propagated; the movement stays validated.
func (s *MovementService) afterValidation(ctx context.Context, tenantID uuid.UUID, movement *stock.StockMovement, snapshots []itemSnapshot) {
	if s.audit != nil {
		for _, snap := range snapshots {
			s.audit.Record(ctx, tenantID, "stock_movement.validate", snap.before, snap.after)
		}
	}

	if s.replenishment != nil {
		for _, itemID := range movement.AffectedItemIDs() {
			if err := s.replenishment.Check(ctx, tenantID, itemID); err != nil {
				s.logger.Error("replenishment check failed",
					zap.String("movement_id", movement.ID.String()),
					zap.String("stock_item_id", itemID.String()),
					zap.Error(err),
				)
			}
		}
	}

	if s.publisher != nil {
		events := movement.GetDomainEvents()
		if len(events) > 0 {
			if err := s.publisher.Publish(ctx, events...); err != nil {
				s.logger.Error("publishing movement events failed",
					zap.String("movement_id", movement.ID.String()),
					zap.Error(err),
				)
			}
			movement.ClearDomainEvents()
		}
	}
}

// resolvePartnerName resolves the display name of a movement partner:
// suppliers for receptions, contacts otherwise
func (s *MovementService) resolvePartnerName(ctx context.Context, tenantID uuid.UUID, movementType stock.MovementType, partnerID uuid.UUID) (string, error) {
	if movementType == stock.MovementTypeReception {
		supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, partnerID)
		if err != nil {
			return "", err
		}
		return supplier.Name, nil
	}
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, partnerID)
	if err != nil {
		return "", err
	}
	return contact.Name, nil
}
