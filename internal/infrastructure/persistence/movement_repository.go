package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"github.com/stocklot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append records a movement and synchronizes the product's cached quantity in
// the same transaction: IN adds, OUT subtracts flooring at zero, ADJUST leaves
// the cache untouched. The ledger row and the cache update commit or roll back
// together, so the cache cannot drift from the ledger on a crash.
func (r *GormMovementRepository) Append(ctx context.Context, productID uuid.UUID, movementType inventory.MovementType, qty decimal.Decimal, note *string) (*inventory.Movement, error) {
	movement, err := inventory.NewMovement(productID, movementType, qty, note)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		delta := movement.SignedQty()
		if delta.IsZero() {
			return nil
		}
		// COALESCE guards legacy rows with a NULL qty; MAX floors at zero.
		// CASTs force numeric arithmetic, decimals bind as text.
		result := tx.Model(&inventory.Product{}).
			Where("id = ?", productID).
			Update("qty", gorm.Expr(
				"MAX(0, CAST(COALESCE(qty, 0) AS NUMERIC) + CAST(? AS NUMERIC))", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ListByProduct returns movements newest first
func (r *GormMovementRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.db.WithContext(ctx).
		Where("productId = ?", productID).
		Order("createdAt DESC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// RemoveByProduct deletes all movements of a product
func (r *GormMovementRepository) RemoveByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&inventory.Movement{}, "productId = ?", productID).Error
}
