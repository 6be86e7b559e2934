package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"github.com/stocklot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles the product catalog: create, update, list and the
// delete cascade over batches and movements.
type ProductService struct {
	productRepo  inventory.ProductRepository
	batchRepo    inventory.BatchRepository
	movementRepo inventory.MovementRepository
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo inventory.ProductRepository,
	batchRepo inventory.BatchRepository,
	movementRepo inventory.MovementRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
		logger:       logger.Named("product"),
	}
}

// Upsert creates a product when input.ID is nil, otherwise updates that
// product. All text fields are normalized; the cached quantity and next
// expiry are never touched here, they belong to the stock ledger.
func (s *ProductService) Upsert(ctx context.Context, input UpsertProductInput) (*inventory.Product, error) {
	name := inventory.OneLine(input.Name)
	if name == "" {
		return nil, shared.ErrNameRequired
	}
	if input.MinStock.IsNegative() {
		input.MinStock = decimal.Zero
	}

	var product *inventory.Product
	if input.ID == nil {
		created, err := inventory.NewProduct(name)
		if err != nil {
			return nil, err
		}
		product = created
	} else {
		existing, err := s.productRepo.FindByID(ctx, *input.ID)
		if err != nil {
			return nil, err
		}
		existing.Name = name
		existing.Touch()
		product = existing
	}

	product.SKU = normalizeOptionalField(input.SKU, inventory.NormalizeSKU)
	product.Category = normalizeOptionalField(input.Category, inventory.NormalizeOptional)
	product.PhotoURL = normalizeOptionalField(input.PhotoURL, inventory.NormalizeOptional)
	product.Brand = normalizeOptionalField(input.Brand, inventory.NormalizeOptional)
	product.Unit = normalizeOptionalField(input.Unit, inventory.NormalizeOptional)
	product.MinStock = input.MinStock

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List returns all products, most recently updated first
func (s *ProductService) List(ctx context.Context) ([]inventory.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// Delete removes a product with its batches and movements. Children go
// first so a failure mid-cascade never leaves orphaned rows pointing at a
// deleted product.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.movementRepo.RemoveByProduct(ctx, id); err != nil {
		return err
	}
	if err := s.batchRepo.RemoveByProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted",
		zap.String("product_id", id.String()),
	)
	return nil
}

func normalizeOptionalField(v *string, normalize func(string) *string) *string {
	if v == nil {
		return nil
	}
	return normalize(*v)
}