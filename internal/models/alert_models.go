package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert levels derived from a ledger entry's available stock.
const (
	AlertLevelOutOfStock = "out_of_stock"
	AlertLevelLowStock   = "low_stock"
)

// InventoryAlert is a derived, never-persisted view of one (warehouse,
// product) ledger entry whose available stock is at or below the product's
// threshold. It is recomputed on every read.
type InventoryAlert struct {
	WarehouseID   int64  `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	WarehouseCode string `json:"warehouse_code"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	ProductSKU    string `json:"product_sku"`
	Quantity      int    `json:"quantity"`
	Reserved      int    `json:"reserved"`
	Available     int    `json:"available"`
	Threshold     int    `json:"threshold"`
	Level         string `json:"level"`
	Critical      bool   `json:"critical"`
}

// ClassifyStockLevel classifies available stock against a threshold.
// available <= 0 is out_of_stock; available <= threshold is low_stock, with
// critical set when available <= floor(threshold/2). The returned level is
// empty when stock is healthy.
func ClassifyStockLevel(available, threshold int) (level string, critical bool) {
	if available <= 0 {
		return AlertLevelOutOfStock, true
	}
	if available <= threshold {
		return AlertLevelLowStock, available <= threshold/2
	}
	return "", false
}

// InventoryStats is the fleet-wide summary recomputed on demand from every
// active warehouse's ledger.
type InventoryStats struct {
	TotalQuantity      int             `json:"total_quantity"`
	TotalReserved      int             `json:"total_reserved"`
	TotalAvailable     int             `json:"total_available"`
	InventoryValue     decimal.Decimal `json:"inventory_value"`
	ProductsTracked    int             `json:"products_tracked"`
	WarehouseCount     int             `json:"warehouse_count"`
	LowStockCount      int             `json:"low_stock_count"`
	OutOfStockCount    int             `json:"out_of_stock_count"`
	PendingTransfers   int             `json:"pending_transfers"`
	PendingAdjustments int             `json:"pending_adjustments"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
