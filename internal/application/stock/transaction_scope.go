package stock

import (
	"context"

	"github.com/stockcore/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the ledger
// repositories. Movement validation runs entirely inside one scope so
// that line applications and the status transition commit or roll back
// together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// StockItemRepo returns the stock item repository scoped to the current transaction
	StockItemRepo() stock.StockItemRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() stock.StockMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests where atomicity is exercised separately.
type NoOpTransactionScope struct {
	itemRepo     stock.StockItemRepository
	movementRepo stock.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(itemRepo stock.StockItemRepository, movementRepo stock.StockMovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{itemRepo: itemRepo, movementRepo: movementRepo}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockItemRepo returns the stock item repository
func (s *NoOpTransactionScope) StockItemRepo() stock.StockItemRepository {
	return s.itemRepo
}

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() stock.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
