package stock

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockcore/backend/internal/domain/shared"
)

func createTestItem(t *testing.T, quantity, unitValue float64) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), "WIDGET-001", "Widget")
	require.NoError(t, err)
	item.Quantity = decimal.NewFromFloat(quantity)
	item.UnitValue = decimal.NewFromFloat(unitValue)
	return item
}

func receptionLine(quantity, unitPrice float64) MovementLine {
	return MovementLine{
		BaseEntity:  shared.NewBaseEntity(),
		StockItemID: uuid.New(),
		Quantity:    decimal.NewFromFloat(quantity),
		UnitPrice:   decimal.NewFromFloat(unitPrice),
	}
}

func TestNewStockItem(t *testing.T) {
	t.Run("creates an empty item", func(t *testing.T) {
		tenantID := uuid.New()
		item, err := NewStockItem(tenantID, "WIDGET-001", "Widget")
		require.NoError(t, err)
		assert.Equal(t, tenantID, item.TenantID)
		assert.True(t, item.Quantity.IsZero())
		assert.True(t, item.UnitValue.IsZero())
		assert.True(t, item.ReorderThreshold.IsZero())
		assert.False(t, item.HasSupplier())
	})

	t.Run("rejects empty reference", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), "", "Widget")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REFERENCE", domainErr.Code)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), "WIDGET-001", "")
		require.Error(t, err)
	})
}

func TestStockItemApplyReception(t *testing.T) {
	t.Run("recomputes the moving average", func(t *testing.T) {
		item := createTestItem(t, 10, 100)

		err := item.ApplyReception([]MovementLine{receptionLine(5, 160)})
		require.NoError(t, err)

		// (10*100 + 5*160) / 15 = 120
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(15)), "quantity = %s", item.Quantity)
		assert.True(t, item.UnitValue.Equal(decimal.NewFromInt(120)), "unit value = %s", item.UnitValue)
	})

	t.Run("first reception sets the unit value", func(t *testing.T) {
		item := createTestItem(t, 0, 0)

		err := item.ApplyReception([]MovementLine{receptionLine(4, 25.5)})
		require.NoError(t, err)

		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(4)))
		assert.True(t, item.UnitValue.Equal(decimal.NewFromFloat(25.5)))
	})

	t.Run("free reception dilutes the average", func(t *testing.T) {
		item := createTestItem(t, 10, 100)

		err := item.ApplyReception([]MovementLine{receptionLine(10, 0)})
		require.NoError(t, err)

		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(20)))
		assert.True(t, item.UnitValue.Equal(decimal.NewFromInt(50)))
	})

	t.Run("preserves total value across lines", func(t *testing.T) {
		item := createTestItem(t, 3, 40)
		before := item.TotalValue()

		lines := []MovementLine{receptionLine(2, 55), receptionLine(1, 10)}
		incoming := decimal.Zero
		for _, line := range lines {
			incoming = incoming.Add(line.LineTotal())
		}

		require.NoError(t, item.ApplyReception(lines))
		assert.True(t, item.TotalValue().Equal(before.Add(incoming)),
			"total value %s, expected %s", item.TotalValue(), before.Add(incoming))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := createTestItem(t, 10, 100)
		e := item.ApplyReception([]MovementLine{receptionLine(0, 50)})
		require.Error(t, e)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		item := createTestItem(t, 10, 100)
		require.Error(t, item.ApplyReception([]MovementLine{receptionLine(1, -5)}))
	})
}

func TestStockItemApplyIssue(t *testing.T) {
	t.Run("decreases quantity and keeps the unit value", func(t *testing.T) {
		item := createTestItem(t, 15, 120)

		e := item.ApplyIssue([]MovementLine{receptionLine(6, 0)})
		require.NoError(t, e)

		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(9)))
		assert.True(t, item.UnitValue.Equal(decimal.NewFromInt(120)))
	})

	t.Run("rejects issuing more than on hand", func(t *testing.T) {
		item := createTestItem(t, 5, 80)

		e := item.ApplyIssue([]MovementLine{receptionLine(8, 0)})
		require.Error(t, e)

		var insufficient *InsufficientStockError
		require.ErrorAs(t, e, &insufficient)
		assert.Equal(t, "WIDGET-001", insufficient.Reference)
		assert.True(t, insufficient.Required.Equal(decimal.NewFromInt(8)))
		assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, shared.ErrInsufficientStock.Code, insufficient.Code())
	})

	t.Run("fails on the first short line", func(t *testing.T) {
		item := createTestItem(t, 5, 80)

		e := item.ApplyIssue([]MovementLine{receptionLine(3, 0), receptionLine(4, 0)})
		require.Error(t, e)

		var insufficient *InsufficientStockError
		require.ErrorAs(t, e, &insufficient)
		assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(2)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := createTestItem(t, 5, 80)
		require.Error(t, item.ApplyIssue([]MovementLine{receptionLine(0, 0)}))
	})
}

func TestStockItemApplyInventory(t *testing.T) {
	t.Run("replaces the on-hand quantity", func(t *testing.T) {
		item := createTestItem(t, 50, 12)

		e := item.ApplyInventory(receptionLine(42, 0))
		require.NoError(t, e)

		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(42)))
		assert.True(t, item.UnitValue.Equal(decimal.NewFromInt(12)))
	})

	t.Run("allows reconciling to zero", func(t *testing.T) {
		item := createTestItem(t, 50, 12)
		require.NoError(t, item.ApplyInventory(receptionLine(0, 0)))
		assert.True(t, item.Quantity.IsZero())
	})

	t.Run("rejects negative count", func(t *testing.T) {
		item := createTestItem(t, 50, 12)
		line := receptionLine(0, 0)
		line.Quantity = decimal.NewFromInt(-1)
		require.Error(t, item.ApplyInventory(line))
	})
}

func TestStockItemThreshold(t *testing.T) {
	t.Run("strictly below threshold triggers", func(t *testing.T) {
		item := createTestItem(t, 10, 0)
		require.NoError(t, item.SetReorderThreshold(decimal.NewFromInt(10)))
		assert.False(t, item.IsBelowThreshold())

		item.Quantity = decimal.NewFromFloat(9.9999)
		assert.True(t, item.IsBelowThreshold())
	})

	t.Run("zero threshold never triggers", func(t *testing.T) {
		item := createTestItem(t, 0, 0)
		assert.False(t, item.IsBelowThreshold())
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		item := createTestItem(t, 0, 0)
		e := item.SetReorderThreshold(decimal.NewFromInt(-1))
		require.Error(t, e)
		var domainErr *shared.DomainError
		assert.True(t, errors.As(e, &domainErr))
	})
}

func TestStockItemSupplier(t *testing.T) {
	item := createTestItem(t, 0, 0)
	assert.False(t, item.HasSupplier())

	supplierID := uuid.New()
	item.AssignSupplier(supplierID)
	require.True(t, item.HasSupplier())
	assert.Equal(t, supplierID, *item.SupplierID)
}

func TestStockItemSnapshot(t *testing.T) {
	item := createTestItem(t, 15, 120)
	snapshot := item.Snapshot()
	assert.Equal(t, item.ID.String(), snapshot["id"])
	assert.Equal(t, "WIDGET-001", snapshot["reference"])
	assert.Equal(t, "15", snapshot["quantity"])
	assert.Equal(t, "120", snapshot["unit_value"])
}
