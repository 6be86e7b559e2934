package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestNewStockBatch(t *testing.T) {
	productID := uuid.New()

	t.Run("creates batch with normalized dates", func(t *testing.T) {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(5), strPtr("10/01/2025"), strPtr("2025-01-02"), nil)
		require.NoError(t, err)
		require.NotNil(t, batch.ExpiryDate)
		assert.Equal(t, "2025-01-10", *batch.ExpiryDate)
		require.NotNil(t, batch.PurchaseDate)
		assert.Equal(t, "2025-01-02", *batch.PurchaseDate)
	})

	t.Run("clamps negative quantity to zero", func(t *testing.T) {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(-3), nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, batch.Quantity.IsZero())
		assert.False(t, batch.IsOpen())
	})

	t.Run("blank expiry becomes nil", func(t *testing.T) {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(1), strPtr("  "), nil, nil)
		require.NoError(t, err)
		assert.Nil(t, batch.ExpiryDate)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewStockBatch(uuid.Nil, decimal.NewFromInt(1), nil, nil, nil)
		assert.Error(t, err)
	})
}

func TestStockBatchDeduct(t *testing.T) {
	productID := uuid.New()

	t.Run("partial deduction", func(t *testing.T) {
		batch, _ := NewStockBatch(productID, decimal.NewFromInt(10), nil, nil, nil)
		taken := batch.Deduct(decimal.NewFromInt(4))
		assert.True(t, taken.Equal(decimal.NewFromInt(4)))
		assert.True(t, batch.Quantity.Equal(decimal.NewFromInt(6)))
	})

	t.Run("over-deduction floors at zero", func(t *testing.T) {
		batch, _ := NewStockBatch(productID, decimal.NewFromInt(3), nil, nil, nil)
		taken := batch.Deduct(decimal.NewFromInt(10))
		assert.True(t, taken.Equal(decimal.NewFromInt(3)))
		assert.True(t, batch.Quantity.IsZero())
	})
}

func TestSortFIFO(t *testing.T) {
	productID := uuid.New()

	mk := func(expiry *string, createdAt time.Time) StockBatch {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(1), expiry, nil, nil)
		require.NoError(t, err)
		batch.CreatedAt = createdAt
		return *batch
	}

	t.Run("dated before undated, soonest first", func(t *testing.T) {
		base := time.Now()
		undated := mk(nil, base)
		late := mk(strPtr("2025-06-01"), base.Add(time.Second))
		early := mk(strPtr("2025-01-05"), base.Add(2*time.Second))

		batches := []StockBatch{undated, late, early}
		SortFIFO(batches)

		require.Len(t, batches, 3)
		assert.Equal(t, early.ID, batches[0].ID)
		assert.Equal(t, late.ID, batches[1].ID)
		assert.Equal(t, undated.ID, batches[2].ID)
	})

	t.Run("equal expiry falls back to creation order", func(t *testing.T) {
		base := time.Now()
		older := mk(strPtr("2025-03-01"), base)
		newer := mk(strPtr("2025-03-01"), base.Add(time.Minute))

		batches := []StockBatch{newer, older}
		SortFIFO(batches)

		assert.Equal(t, older.ID, batches[0].ID)
		assert.Equal(t, newer.ID, batches[1].ID)
	})
}

func TestPlanConsumption(t *testing.T) {
	productID := uuid.New()

	mk := func(expiry *string, qty int64, createdAt time.Time) StockBatch {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(qty), expiry, nil, nil)
		require.NoError(t, err)
		batch.CreatedAt = createdAt
		return *batch
	}

	t.Run("consumes soonest expiry first", func(t *testing.T) {
		base := time.Now()
		b1 := mk(strPtr("2025-01-10"), 5, base)
		b2 := mk(strPtr("2025-01-05"), 3, base.Add(time.Second))
		b3 := mk(nil, 10, base.Add(2*time.Second))

		plan := PlanConsumption([]StockBatch{b1, b2, b3}, decimal.NewFromInt(6))

		assert.True(t, plan.Consumed.Equal(decimal.NewFromInt(6)))
		assert.True(t, plan.Shortfall.IsZero())
		require.Len(t, plan.Takes, 2)

		assert.Equal(t, b2.ID, plan.Takes[0].BatchID)
		assert.True(t, plan.Takes[0].Take.Equal(decimal.NewFromInt(3)))
		assert.True(t, plan.Takes[0].Remaining.IsZero())

		assert.Equal(t, b1.ID, plan.Takes[1].BatchID)
		assert.True(t, plan.Takes[1].Take.Equal(decimal.NewFromInt(3)))
		assert.True(t, plan.Takes[1].Remaining.Equal(decimal.NewFromInt(2)))
	})

	t.Run("insufficient stock consumes everything", func(t *testing.T) {
		base := time.Now()
		b1 := mk(strPtr("2025-01-10"), 3, base)
		b2 := mk(nil, 1, base.Add(time.Second))

		plan := PlanConsumption([]StockBatch{b1, b2}, decimal.NewFromInt(10))

		assert.True(t, plan.Consumed.Equal(decimal.NewFromInt(4)))
		assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(6)))
		require.Len(t, plan.Takes, 2)
		for _, take := range plan.Takes {
			assert.True(t, take.Remaining.IsZero())
		}
	})

	t.Run("closed batches are skipped", func(t *testing.T) {
		base := time.Now()
		empty := mk(strPtr("2025-01-01"), 0, base)
		open := mk(strPtr("2025-02-01"), 5, base.Add(time.Second))

		plan := PlanConsumption([]StockBatch{empty, open}, decimal.NewFromInt(2))

		require.Len(t, plan.Takes, 1)
		assert.Equal(t, open.ID, plan.Takes[0].BatchID)
	})

	t.Run("zero request is an empty plan", func(t *testing.T) {
		b := mk(nil, 5, time.Now())
		plan := PlanConsumption([]StockBatch{b}, decimal.Zero)
		assert.Empty(t, plan.Takes)
		assert.True(t, plan.Consumed.IsZero())
		assert.True(t, plan.Shortfall.IsZero())
	})
}
