package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
)

// AdjustInput describes a stock adjustment. A positive Delta receives stock
// into a new batch; a negative Delta consumes existing batches FIFO. The
// batch metadata fields only apply to positive deltas.
type AdjustInput struct {
	ProductID    uuid.UUID
	Delta        decimal.Decimal
	Note         *string
	ExpiryDate   *string
	PurchaseDate *string
	Cost         *decimal.Decimal
}

// AdjustResult reports what an adjustment actually did. For OUT adjustments
// Applied may fall short of Requested when stock ran out; the difference is
// Shortfall. Callers decide whether a shortfall warrants a user-facing warning.
type AdjustResult struct {
	Requested decimal.Decimal
	Applied   decimal.Decimal
	Shortfall decimal.Decimal
}

// UpsertProductInput describes a product create or update. A nil ID creates;
// a non-nil ID updates that product. Optional fields left nil are cleared on
// update, matching a form submit that sends the full record.
type UpsertProductInput struct {
	ID       *uuid.UUID
	Name     string
	SKU      *string
	Category *string
	PhotoURL *string
	Brand    *string
	Unit     *string
	MinStock decimal.Decimal
}

// StockAlert describes a stock level status transition worth notifying about
type StockAlert struct {
	Name     string
	Status   inventory.StockStatus
	Qty      decimal.Decimal
	MinStock decimal.Decimal
}
