package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementIn represents stock coming in (new batch received)
	MovementIn MovementType = "IN"
	// MovementOut represents stock going out (FIFO consumption)
	MovementOut MovementType = "OUT"
	// MovementAdjust is an audit annotation that does not change stock
	MovementAdjust MovementType = "ADJUST"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// QtySign returns the effect of this movement type on the cached product
// quantity: +1 for IN, -1 for OUT, 0 for ADJUST.
func (t MovementType) QtySign() int {
	switch t {
	case MovementIn:
		return 1
	case MovementOut:
		return -1
	}
	return 0
}

// Movement is an immutable record of a stock change. Once created, movements
// are never mutated or deleted except by the product delete cascade.
// Quantity is always positive; direction is encoded by Type.
type Movement struct {
	ID        uuid.UUID       `gorm:"column:id;type:text;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:productId;type:text;not null;index"`
	Type      MovementType    `gorm:"column:type;type:text;not null"`
	Qty       decimal.Decimal `gorm:"column:qty;type:decimal(18,4);not null"`
	Note      *string         `gorm:"column:note"`
	CreatedAt time.Time       `gorm:"column:createdAt;not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

var minMovementQty = decimal.NewFromInt(1)

// NewMovement creates a movement. A quantity below 1 is clamped to 1: a
// zero-quantity movement is meaningless, so the ledger records at least one
// unit regardless of what the caller supplied.
func NewMovement(productID uuid.UUID, movementType MovementType, qty decimal.Decimal, note *string) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if qty.LessThan(minMovementQty) {
		qty = minMovementQty
	}
	return &Movement{
		ID:        uuid.New(),
		ProductID: productID,
		Type:      movementType,
		Qty:       qty,
		Note:      note,
		CreatedAt: time.Now(),
	}, nil
}

// SignedQty returns the movement's effect on the cached product quantity
func (m *Movement) SignedQty() decimal.Decimal {
	switch m.Type.QtySign() {
	case 1:
		return m.Qty
	case -1:
		return m.Qty.Neg()
	}
	return decimal.Zero
}
