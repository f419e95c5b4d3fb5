package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is applied when a product has no threshold of its own.
const DefaultLowStockThreshold = 10

// Product represents a catalog product as the inventory core sees it:
// identity, unit price and the low-stock threshold used by alerting.
type Product struct {
	ID                int64           `json:"id" db:"id"`
	Name              string          `json:"name" db:"name" binding:"required"`
	SKU               string          `json:"sku" db:"sku" binding:"required"`
	Description       *string         `json:"description,omitempty" db:"description"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	LowStockThreshold *int            `json:"low_stock_threshold,omitempty" db:"low_stock_threshold"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// EffectiveThreshold returns the product's low-stock threshold, falling back
// to DefaultLowStockThreshold when unset or non-positive.
func (p *Product) EffectiveThreshold() int {
	if p.LowStockThreshold != nil && *p.LowStockThreshold > 0 {
		return *p.LowStockThreshold
	}
	return DefaultLowStockThreshold
}
