package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- AlertService Interface ---

// AlertService derives alerts and fleet statistics from the live ledgers.
// Nothing here is persisted; every call recomputes from the current state,
// so an alert disappears the moment the underlying stock recovers.
type AlertService interface {
	// GetAlerts scans every active warehouse and returns one alert per
	// ledger entry at or below its product's low-stock threshold. Passing a
	// level filters to out_of_stock or low_stock only.
	GetAlerts(warehouseID *int64, level *string) ([]models.InventoryAlert, error)
	GetStats() (*models.InventoryStats, error)
}

// --- alertService Implementation ---

type alertService struct {
	warehouseRepo  repositories.WarehouseRepository
	productRepo    repositories.ProductRepository
	transferRepo   repositories.TransferRepository
	adjustmentRepo repositories.AdjustmentRepository
	db             *sql.DB
}

// NewAlertService creates a new instance of AlertService.
func NewAlertService(
	wr repositories.WarehouseRepository,
	pr repositories.ProductRepository,
	tr repositories.TransferRepository,
	ar repositories.AdjustmentRepository,
	db *sql.DB,
) AlertService {
	return &alertService{
		warehouseRepo:  wr,
		productRepo:    pr,
		transferRepo:   tr,
		adjustmentRepo: ar,
		db:             db,
	}
}

func (s *alertService) GetAlerts(warehouseID *int64, level *string) ([]models.InventoryAlert, error) {
	warehouses, productsByID, err := s.loadFleet(warehouseID)
	if err != nil {
		return nil, err
	}

	alerts := []models.InventoryAlert{}
	for i := range warehouses {
		warehouse := &warehouses[i]
		for _, entry := range warehouse.Stock {
			product, ok := productsByID[entry.ProductID]
			if !ok {
				continue
			}
			available := entry.Available()
			alertLevel, critical := models.ClassifyStockLevel(available, product.EffectiveThreshold())
			if alertLevel == "" {
				continue
			}
			if level != nil && *level != "" && *level != alertLevel {
				continue
			}
			alerts = append(alerts, models.InventoryAlert{
				WarehouseID:   warehouse.ID,
				WarehouseName: warehouse.Name,
				WarehouseCode: warehouse.Code,
				ProductID:     product.ID,
				ProductName:   product.Name,
				ProductSKU:    product.SKU,
				Quantity:      entry.Quantity,
				Reserved:      entry.Reserved,
				Available:     available,
				Threshold:     product.EffectiveThreshold(),
				Level:         alertLevel,
				Critical:      critical,
			})
		}
	}
	return alerts, nil
}

func (s *alertService) GetStats() (*models.InventoryStats, error) {
	warehouses, productsByID, err := s.loadFleet(nil)
	if err != nil {
		return nil, err
	}

	stats := &models.InventoryStats{
		WarehouseCount: len(warehouses),
		InventoryValue: decimal.Zero,
		GeneratedAt:    time.Now(),
	}
	trackedProducts := make(map[int64]bool)
	for i := range warehouses {
		for _, entry := range warehouses[i].Stock {
			stats.TotalQuantity += entry.Quantity
			stats.TotalReserved += entry.Reserved
			stats.TotalAvailable += entry.Available()
			if entry.Quantity > 0 {
				trackedProducts[entry.ProductID] = true
			}

			product, ok := productsByID[entry.ProductID]
			if !ok {
				continue
			}
			stats.InventoryValue = stats.InventoryValue.Add(
				product.UnitPrice.Mul(decimal.NewFromInt(int64(entry.Quantity))))

			switch level, _ := models.ClassifyStockLevel(entry.Available(), product.EffectiveThreshold()); level {
			case models.AlertLevelOutOfStock:
				stats.OutOfStockCount++
			case models.AlertLevelLowStock:
				stats.LowStockCount++
			}
		}
	}
	stats.ProductsTracked = len(trackedProducts)

	if stats.PendingTransfers, err = s.transferRepo.CountByStatus(s.db, models.TransferStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending transfers: %w", err)
	}
	if stats.PendingAdjustments, err = s.adjustmentRepo.CountByStatus(s.db, models.AdjustmentStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending adjustments: %w", err)
	}
	return stats, nil
}

// loadFleet loads the active warehouses (or just one) with their ledgers plus
// a product lookup map.
func (s *alertService) loadFleet(warehouseID *int64) ([]models.Warehouse, map[int64]models.Product, error) {
	var warehouses []models.Warehouse
	if warehouseID != nil {
		warehouse, err := s.warehouseRepo.GetByID(s.db, *warehouseID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, ErrWarehouseNotFound
			}
			return nil, nil, fmt.Errorf("failed to load warehouse %d: %w", *warehouseID, err)
		}
		warehouses = []models.Warehouse{*warehouse}
	} else {
		var err error
		warehouses, err = s.warehouseRepo.GetAll(true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load warehouses: %w", err)
		}
	}

	products, err := s.productRepo.GetAll(false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}
	productsByID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	return warehouses, productsByID, nil
}
