package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"github.com/stocklot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns all products, most recently updated first
func (r *GormProductRepository) FindAll(ctx context.Context) ([]inventory.Product, error) {
	var products []inventory.Product
	if err := r.db.WithContext(ctx).
		Order("updatedAt DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SetQty overwrites the cached quantity. The floor at zero lives in the SQL
// so a concurrent writer cannot push the cache negative between read and write.
// The CAST forces numeric comparison; decimals bind as text.
func (r *GormProductRepository) SetQty(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&inventory.Product{}).
		Where("id = ?", id).
		Update("qty", gorm.Expr("MAX(0, CAST(? AS NUMERIC))", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetNextExpiry overwrites the cached soonest expiry date. A nil value clears it.
func (r *GormProductRepository) SetNextExpiry(ctx context.Context, id uuid.UUID, nextExpiry *string) error {
	result := r.db.WithContext(ctx).Model(&inventory.Product{}).
		Where("id = ?", id).
		Update("next_expiry", nextExpiry)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the product row. Batches and movements are removed by the
// application-level cascade before this is called.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
