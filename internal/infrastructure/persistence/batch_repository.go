package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Add stores a batch
func (r *GormBatchRepository) Add(ctx context.Context, batch *inventory.StockBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// ListByProduct returns all batches for a product in FIFO consumption order:
// dated batches first (soonest expiry leading), then undated ones, creation
// time breaking ties. Expiry dates are YYYY-MM-DD text, so the SQL ordering
// is chronological.
func (r *GormBatchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("productId = ?", productID).
		Order("(expiryDate IS NULL) ASC").
		Order("expiryDate ASC").
		Order("createdAt ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// ConsumeFIFO decrements open batches in FIFO order until qty is satisfied or
// stock runs out, inside a single transaction. Rows reaching zero are kept.
// Returns the amount actually consumed; a short return means insufficient stock.
func (r *GormBatchRepository) ConsumeFIFO(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (decimal.Decimal, error) {
	consumed := decimal.Zero
	if !qty.IsPositive() {
		return consumed, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batches []inventory.StockBatch
		if err := tx.
			Where("productId = ? AND quantity > 0", productID).
			Order("(expiryDate IS NULL) ASC").
			Order("expiryDate ASC").
			Order("createdAt ASC").
			Find(&batches).Error; err != nil {
			return err
		}

		plan := inventory.PlanConsumption(batches, qty)
		for _, take := range plan.Takes {
			if err := tx.Model(&inventory.StockBatch{}).
				Where("id = ?", take.BatchID).
				Update("quantity", take.Remaining).Error; err != nil {
				return err
			}
		}
		consumed = plan.Consumed
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return consumed, nil
}

// NextExpiry returns the soonest expiry among open dated batches, or nil when
// no open batch carries a date.
func (r *GormBatchRepository) NextExpiry(ctx context.Context, productID uuid.UUID) (*string, error) {
	var next sql.NullString
	if err := r.db.WithContext(ctx).Model(&inventory.StockBatch{}).
		Where("productId = ? AND quantity > 0 AND expiryDate IS NOT NULL", productID).
		Select("MIN(expiryDate)").
		Scan(&next).Error; err != nil {
		return nil, err
	}
	if !next.Valid {
		return nil, nil
	}
	return &next.String, nil
}

// ExpirySummary aggregates expired and soon-expiring open stock per product.
// Expired counts dates strictly before today; soon counts today through the
// cutoff, inclusive. Products with no open dated batches are omitted.
func (r *GormBatchRepository) ExpirySummary(ctx context.Context, daysAhead int) ([]inventory.ExpirySummaryRow, error) {
	if daysAhead < 0 {
		daysAhead = 0
	}
	now := time.Now()
	today := now.Format("2006-01-02")
	cutoff := now.AddDate(0, 0, daysAhead).Format("2006-01-02")

	var rows []inventory.ExpirySummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT productId                                           AS product_id,
		       MIN(expiryDate)                                     AS next_expiry,
		       SUM(CASE WHEN expiryDate < ? THEN quantity ELSE 0 END)                         AS expired_qty,
		       SUM(CASE WHEN expiryDate >= ? AND expiryDate <= ? THEN quantity ELSE 0 END)    AS soon_qty
		FROM batches
		WHERE quantity > 0 AND expiryDate IS NOT NULL
		GROUP BY productId
		ORDER BY MIN(expiryDate) ASC`,
		today, today, cutoff,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RemoveByProduct deletes all batches of a product
func (r *GormBatchRepository) RemoveByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&inventory.StockBatch{}, "productId = ?", productID).Error
}
