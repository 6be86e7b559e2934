package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository is the persistence port for products
type ProductRepository interface {
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindAll returns all products, most recently updated first
	FindAll(ctx context.Context) ([]Product, error)
	// SetQty overwrites the cached quantity, flooring at zero
	SetQty(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
	// SetNextExpiry overwrites the cached soonest expiry date
	SetNextExpiry(ctx context.Context, id uuid.UUID, nextExpiry *string) error
	// Delete removes the product row only; callers cascade batches and
	// movements first
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpirySummaryRow aggregates batch expiry quantities for one product
type ExpirySummaryRow struct {
	ProductID  uuid.UUID
	NextExpiry *string
	ExpiredQty decimal.Decimal
	SoonQty    decimal.Decimal
}

// BatchRepository is the persistence port for stock batches
type BatchRepository interface {
	// Add stores a batch
	Add(ctx context.Context, batch *StockBatch) error
	// ListByProduct returns all batches for a product in FIFO consumption
	// order, consumed batches included
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)
	// ConsumeFIFO decrements open batches in FIFO order until qty is
	// satisfied or stock runs out. Returns the amount actually consumed;
	// insufficient stock is reported by a short return, not an error.
	ConsumeFIFO(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (decimal.Decimal, error)
	// NextExpiry returns the soonest expiry among open dated batches
	NextExpiry(ctx context.Context, productID uuid.UUID) (*string, error)
	// ExpirySummary aggregates expired and soon-expiring quantities per
	// product across all open batches
	ExpirySummary(ctx context.Context, daysAhead int) ([]ExpirySummaryRow, error)
	// RemoveByProduct deletes all batches of a product (delete cascade)
	RemoveByProduct(ctx context.Context, productID uuid.UUID) error
}

// MovementRepository is the persistence port for the movement ledger
type MovementRepository interface {
	// Append records a movement and synchronizes the product's cached
	// quantity: IN adds, OUT subtracts flooring at zero, ADJUST leaves it
	// untouched. Quantities below 1 are clamped to 1.
	Append(ctx context.Context, productID uuid.UUID, movementType MovementType, qty decimal.Decimal, note *string) (*Movement, error)
	// ListByProduct returns movements newest first
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Movement, error)
	// RemoveByProduct deletes all movements of a product (delete cascade)
	RemoveByProduct(ctx context.Context, productID uuid.UUID) error
}

// SettingsStore is the port for persisted expiry settings
type SettingsStore interface {
	// GetExpirySettings returns the stored thresholds, normalized
	GetExpirySettings(ctx context.Context) (ExpirySettings, error)
	// SetExpirySettings merges a partial update over the stored thresholds,
	// enforcing clamping and the ok > soon coherence rule on write
	SetExpirySettings(ctx context.Context, patch ExpirySettingsPatch) error
}

// Notification is a local notification request
type Notification struct {
	Title string
	Body  string
}

// Notifier is the port to the host environment's notification facility.
// The core treats it as fire-and-forget.
type Notifier interface {
	// RequestPermission asks the host for notification permission
	RequestPermission(ctx context.Context) (bool, error)
	// CancelAllScheduled drops any scheduled-but-undelivered notifications
	CancelAllScheduled(ctx context.Context) error
	// ScheduleImmediate schedules a notification for immediate delivery
	ScheduleImmediate(ctx context.Context, n Notification) error
}
