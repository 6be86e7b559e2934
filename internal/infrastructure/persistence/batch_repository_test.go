package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBatch(t *testing.T, repo *GormBatchRepository, product *inventory.Product, qty int64, expiry *string) *inventory.StockBatch {
	t.Helper()
	batch, err := inventory.NewStockBatch(product.ID, decimal.NewFromInt(qty), expiry, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), batch))
	return batch
}

func datePtr(s string) *string {
	return &s
}

func TestGormBatchRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db.DB)
	product := createTestProduct(t, db, "Milk")

	cost := decimal.NewFromFloat(2.5)
	batch, err := inventory.NewStockBatch(product.ID, decimal.NewFromInt(-3), datePtr("10/01/2025"), datePtr(""), &cost)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, batch))

	batches, err := repo.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	got := batches[0]
	assert.True(t, got.Quantity.IsZero(), "negative quantity clamps to zero")
	require.NotNil(t, got.ExpiryDate)
	assert.Equal(t, "2025-01-10", *got.ExpiryDate)
	assert.Nil(t, got.PurchaseDate, "blank date becomes null")
	require.NotNil(t, got.Cost)
	assert.True(t, got.Cost.Equal(cost))
}

func TestGormBatchRepositoryListOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db.DB)
	product := createTestProduct(t, db, "Cheese")

	undated := addBatch(t, repo, product, 10, nil)
	late := addBatch(t, repo, product, 5, datePtr("2025-06-01"))
	early := addBatch(t, repo, product, 3, datePtr("2025-01-05"))

	batches, err := repo.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, early.ID, batches[0].ID)
	assert.Equal(t, late.ID, batches[1].ID)
	assert.Equal(t, undated.ID, batches[2].ID)
}

func TestGormBatchRepositoryConsumeFIFO(t *testing.T) {
	t.Run("consumes soonest expiry first", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		repo := NewGormBatchRepository(db.DB)
		product := createTestProduct(t, db, "Butter")

		b1 := addBatch(t, repo, product, 5, datePtr("2025-01-10"))
		b2 := addBatch(t, repo, product, 3, datePtr("2025-01-05"))
		b3 := addBatch(t, repo, product, 10, nil)

		consumed, err := repo.ConsumeFIFO(ctx, product.ID, decimal.NewFromInt(6))
		require.NoError(t, err)
		decimalsEqual(t, 6, consumed)

		remaining := map[string]int64{}
		batches, err := repo.ListByProduct(ctx, product.ID)
		require.NoError(t, err)
		for _, b := range batches {
			remaining[b.ID.String()] = b.Quantity.IntPart()
		}
		assert.Equal(t, int64(2), remaining[b1.ID.String()])
		assert.Equal(t, int64(0), remaining[b2.ID.String()])
		assert.Equal(t, int64(10), remaining[b3.ID.String()])
	})

	t.Run("insufficient stock returns partial amount", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		repo := NewGormBatchRepository(db.DB)
		product := createTestProduct(t, db, "Eggs")

		addBatch(t, repo, product, 3, datePtr("2025-02-01"))
		addBatch(t, repo, product, 1, nil)

		consumed, err := repo.ConsumeFIFO(ctx, product.ID, decimal.NewFromInt(10))
		require.NoError(t, err)
		decimalsEqual(t, 4, consumed)

		batches, err := repo.ListByProduct(ctx, product.ID)
		require.NoError(t, err)
		for _, b := range batches {
			assert.True(t, b.Quantity.IsZero())
		}
	})

	t.Run("zero request consumes nothing", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		repo := NewGormBatchRepository(db.DB)
		product := createTestProduct(t, db, "Salt")
		addBatch(t, repo, product, 5, nil)

		consumed, err := repo.ConsumeFIFO(ctx, product.ID, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, consumed.IsZero())
	})
}

func TestGormBatchRepositoryNextExpiry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db.DB)
	product := createTestProduct(t, db, "Juice")

	t.Run("nil when no dated open batches", func(t *testing.T) {
		addBatch(t, repo, product, 5, nil)
		next, err := repo.NextExpiry(ctx, product.ID)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("minimum open expiry wins", func(t *testing.T) {
		addBatch(t, repo, product, 5, datePtr("2025-05-01"))
		addBatch(t, repo, product, 5, datePtr("2025-03-01"))
		empty := addBatch(t, repo, product, 2, datePtr("2025-01-01"))

		// Drain the earliest batch; a closed batch must not drive next expiry
		_, err := repo.ConsumeFIFO(ctx, product.ID, empty.Quantity)
		require.NoError(t, err)

		next, err := repo.NextExpiry(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "2025-03-01", *next)
	})
}

func TestGormBatchRepositoryExpirySummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db.DB)

	expiredProduct := createTestProduct(t, db, "Expired Stock")
	soonProduct := createTestProduct(t, db, "Soon Stock")
	undatedProduct := createTestProduct(t, db, "Undated Stock")

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	inFive := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	farOut := time.Now().AddDate(0, 0, 90).Format("2006-01-02")

	addBatch(t, repo, expiredProduct, 4, datePtr(yesterday))
	addBatch(t, repo, soonProduct, 2, datePtr(inFive))
	addBatch(t, repo, soonProduct, 7, datePtr(farOut))
	addBatch(t, repo, undatedProduct, 9, nil)

	rows, err := repo.ExpirySummary(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rows, 2, "undated-only products are omitted")

	byProduct := map[string]inventory.ExpirySummaryRow{}
	for _, row := range rows {
		byProduct[row.ProductID.String()] = row
	}

	expired := byProduct[expiredProduct.ID.String()]
	decimalsEqual(t, 4, expired.ExpiredQty)
	decimalsEqual(t, 0, expired.SoonQty)
	require.NotNil(t, expired.NextExpiry)
	assert.Equal(t, yesterday, *expired.NextExpiry)

	soon := byProduct[soonProduct.ID.String()]
	decimalsEqual(t, 0, soon.ExpiredQty)
	decimalsEqual(t, 2, soon.SoonQty)
	require.NotNil(t, soon.NextExpiry)
	assert.Equal(t, inFive, *soon.NextExpiry)
}

func TestGormBatchRepositoryRemoveByProduct(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db.DB)

	keep := createTestProduct(t, db, "Keep")
	drop := createTestProduct(t, db, "Drop")
	addBatch(t, repo, keep, 1, nil)
	addBatch(t, repo, drop, 1, nil)
	addBatch(t, repo, drop, 2, nil)

	require.NoError(t, repo.RemoveByProduct(ctx, drop.ID))

	kept, err := repo.ListByProduct(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	removed, err := repo.ListByProduct(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
