package inventory

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/shared"
)

// Product is a tracked item. Qty is a derived running total kept in sync by
// the movement ledger; NextExpiry caches the soonest expiry across open
// batches. Column names follow the on-device schema.
type Product struct {
	shared.BaseEntity
	SKU        *string         `gorm:"column:sku"`
	Name       string          `gorm:"column:name;not null"`
	Category   *string         `gorm:"column:category"`
	PhotoURL   *string         `gorm:"column:photo_url"`
	Brand      *string         `gorm:"column:brand"`
	Unit       *string         `gorm:"column:unit"`
	MinStock   decimal.Decimal `gorm:"column:minStock;type:decimal(18,4);not null;default:0"`
	Qty        decimal.Decimal `gorm:"column:qty;type:decimal(18,4);not null;default:0"`
	NextExpiry *string         `gorm:"column:next_expiry"` // YYYY-MM-DD
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product with a normalized name.
// The name is collapsed to a single line and must be non-empty.
func NewProduct(name string) (*Product, error) {
	n := OneLine(name)
	if n == "" {
		return nil, shared.ErrNameRequired
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       n,
		MinStock:   decimal.Zero,
		Qty:        decimal.Zero,
	}, nil
}

// StockStatus classifies a product's quantity against its minimum threshold.
type StockStatus string

const (
	// StockStatusOut means the product has no stock at all
	StockStatusOut StockStatus = "out"
	// StockStatusLow means stock is at or below the configured minimum
	StockStatusLow StockStatus = "low"
	// StockStatusOK means stock is above the configured minimum
	StockStatusOK StockStatus = "ok"
)

// StockStatusOf returns the stock status for a quantity and minimum.
// A minimum of zero disables the "low" classification.
func StockStatusOf(qty, minStock decimal.Decimal) StockStatus {
	if qty.LessThanOrEqual(decimal.Zero) {
		return StockStatusOut
	}
	if minStock.IsPositive() && qty.LessThanOrEqual(minStock) {
		return StockStatusLow
	}
	return StockStatusOK
}

// StockStatus returns the stock status of the product
func (p *Product) StockStatus() StockStatus {
	return StockStatusOf(p.Qty, p.MinStock)
}

var (
	lineBreaks = regexp.MustCompile(`[\r\n\x{2028}\x{2029}]+`)
	invisibles = regexp.MustCompile(`[\x{00AD}\x{200B}-\x{200D}\x{2060}\x{FEFF}]`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// OneLine normalizes free text to a single trimmed line: line breaks become
// spaces, zero-width characters are dropped, runs of whitespace collapse.
func OneLine(s string) string {
	s = lineBreaks.ReplaceAllString(s, " ")
	s = invisibles.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeOptional collapses a value to a single line, returning nil when
// nothing remains.
func NormalizeOptional(s string) *string {
	v := OneLine(s)
	if v == "" {
		return nil
	}
	return &v
}

// NormalizeSKU trims and uppercases a SKU, returning nil when blank.
func NormalizeSKU(s string) *string {
	v := strings.ToUpper(OneLine(s))
	if v == "" {
		return nil
	}
	return &v
}
