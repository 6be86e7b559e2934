package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/shared"
)

// StockBatch is a lot of stock received together. Quantity is decremented in
// place by FIFO consumption and never goes negative; rows are kept at zero
// quantity for history and only removed with their product.
type StockBatch struct {
	shared.BaseEntity
	ProductID    uuid.UUID        `gorm:"column:productId;type:text;not null;index"`
	Quantity     decimal.Decimal  `gorm:"column:quantity;type:decimal(18,4);not null"`
	ExpiryDate   *string          `gorm:"column:expiryDate"`   // YYYY-MM-DD
	PurchaseDate *string          `gorm:"column:purchaseDate"` // YYYY-MM-DD
	Cost         *decimal.Decimal `gorm:"column:cost;type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "batches"
}

// NewStockBatch creates a batch for a product. Negative quantities are
// clamped to zero: a stock decrease is realized as FIFO consumption against
// existing batches, never as a negative batch row.
func NewStockBatch(productID uuid.UUID, quantity decimal.Decimal, expiryDate, purchaseDate *string, cost *decimal.Decimal) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		quantity = decimal.Zero
	}
	return &StockBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		Quantity:     quantity,
		ExpiryDate:   normalizeOptionalDate(expiryDate),
		PurchaseDate: normalizeOptionalDate(purchaseDate),
		Cost:         cost,
	}, nil
}

func normalizeOptionalDate(s *string) *string {
	if s == nil {
		return nil
	}
	return NormalizeDate(*s)
}

// IsOpen returns true if the batch still has stock to consume
func (b *StockBatch) IsOpen() bool {
	return b.Quantity.IsPositive()
}

// Deduct reduces the batch quantity, flooring at zero.
// Returns the amount actually deducted.
func (b *StockBatch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	if quantity.GreaterThan(b.Quantity) {
		deducted := b.Quantity
		b.Quantity = decimal.Zero
		b.Touch()
		return deducted
	}
	b.Quantity = b.Quantity.Sub(quantity)
	b.Touch()
	return quantity
}

// SortFIFO orders batches for consumption: dated batches before undated ones,
// soonest expiry first, ties broken by creation time (oldest first). Dates are
// YYYY-MM-DD strings, so lexicographic order is chronological.
func SortFIFO(batches []StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		bi, bj := batches[i], batches[j]
		switch {
		case bi.ExpiryDate != nil && bj.ExpiryDate != nil:
			if *bi.ExpiryDate != *bj.ExpiryDate {
				return *bi.ExpiryDate < *bj.ExpiryDate
			}
		case bi.ExpiryDate != nil:
			return true
		case bj.ExpiryDate != nil:
			return false
		}
		return bi.CreatedAt.Before(bj.CreatedAt)
	})
}

// BatchTake is one step of a consumption plan
type BatchTake struct {
	BatchID   uuid.UUID
	Take      decimal.Decimal
	Remaining decimal.Decimal
}

// ConsumptionPlan describes how a requested quantity maps onto open batches
type ConsumptionPlan struct {
	Takes     []BatchTake
	Consumed  decimal.Decimal
	Shortfall decimal.Decimal
}

// PlanConsumption computes which batches a FIFO consumption of the requested
// quantity would draw from. Batches are sorted with SortFIFO first; closed
// batches are skipped. Requests of zero or less yield an empty plan.
// Insufficient stock is not an error: the plan consumes what is available and
// reports the rest as Shortfall.
func PlanConsumption(batches []StockBatch, requested decimal.Decimal) ConsumptionPlan {
	plan := ConsumptionPlan{Takes: make([]BatchTake, 0)}
	if !requested.IsPositive() {
		return plan
	}

	open := make([]StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsOpen() {
			open = append(open, b)
		}
	}
	SortFIFO(open)

	remaining := requested
	for _, b := range open {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, b.Quantity)
		plan.Takes = append(plan.Takes, BatchTake{
			BatchID:   b.ID,
			Take:      take,
			Remaining: b.Quantity.Sub(take),
		})
		plan.Consumed = plan.Consumed.Add(take)
		remaining = remaining.Sub(take)
	}
	plan.Shortfall = remaining
	return plan
}
