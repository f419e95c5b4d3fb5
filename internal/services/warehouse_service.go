package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrWarehouseCodeExists = errors.New("warehouse code already exists")
	ErrWarehouseNotEmpty   = errors.New("warehouse still holds stock")
	ErrProductNotFound     = errors.New("product not found")
	ErrValidation          = errors.New("validation error")
	ErrInvalidState        = errors.New("operation not allowed in current state")

	// ErrInsufficientStock surfaces the ledger invariant to callers; matching
	// either this or models.ErrInsufficientStock with errors.Is works.
	ErrInsufficientStock = models.ErrInsufficientStock
)

// --- Data Transfer Objects (DTOs) ---

// CreateWarehouseRequest is used to register a new warehouse.
type CreateWarehouseRequest struct {
	Name         string  `json:"name" binding:"required"`
	Code         string  `json:"code" binding:"required"`
	Address      *string `json:"address"`
	ContactPhone *string `json:"contact_phone"`
	ManagerID    *int64  `json:"manager_id"`
}

// UpdateWarehouseRequest updates warehouse identity fields. Pointer fields
// distinguish "not provided" from zero values.
type UpdateWarehouseRequest struct {
	Name         *string `json:"name"`
	Code         *string `json:"code"`
	Address      *string `json:"address"`
	ContactPhone *string `json:"contact_phone"`
	ManagerID    *int64  `json:"manager_id"`
	IsActive     *bool   `json:"is_active"`
}

// StockMutationRequest applies a direct delta to one ledger entry
// (goods receipt, manual correction, order pick).
type StockMutationRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Operation string `json:"operation" binding:"required,oneof=add subtract set"`
}

// --- WarehouseService Interface ---

// WarehouseService owns warehouse identity and is the single write path to
// the embedded stock ledgers. Every ledger mutation is a read-modify-write of
// one warehouse aggregate inside one transaction.
type WarehouseService interface {
	CreateWarehouse(req CreateWarehouseRequest, actorID int64) (*models.Warehouse, error)
	GetWarehouses(onlyActive bool) ([]models.Warehouse, error)
	GetWarehouseByID(warehouseID int64) (*models.Warehouse, error)
	UpdateWarehouse(warehouseID int64, req UpdateWarehouseRequest, actorID int64) (*models.Warehouse, error)
	// DeleteWarehouse refuses to remove a warehouse whose ledger still has
	// any positive-quantity entry.
	DeleteWarehouse(warehouseID int64, actorID int64) error
	// MutateStock applies one add/subtract/set operation and persists the
	// aggregate as a unit.
	MutateStock(warehouseID int64, req StockMutationRequest, actorID int64) (*models.Warehouse, error)
	// AvailableStock returns quantity - reserved, 0 for a missing entry.
	AvailableStock(warehouseID, productID int64) (int, error)
}

// --- warehouseService Implementation ---

type warehouseService struct {
	warehouseRepo repositories.WarehouseRepository
	productRepo   repositories.ProductRepository
	activity      ActivityService
	db            *sql.DB
}

// NewWarehouseService creates a new instance of WarehouseService.
func NewWarehouseService(
	wr repositories.WarehouseRepository,
	pr repositories.ProductRepository,
	activity ActivityService,
	db *sql.DB,
) WarehouseService {
	return &warehouseService{
		warehouseRepo: wr,
		productRepo:   pr,
		activity:      activity,
		db:            db,
	}
}

func (s *warehouseService) CreateWarehouse(req CreateWarehouseRequest, actorID int64) (*models.Warehouse, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("%w: warehouse name and code are required", ErrValidation)
	}

	warehouse := &models.Warehouse{
		Name:         req.Name,
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Address:      req.Address,
		ContactPhone: req.ContactPhone,
		ManagerID:    req.ManagerID,
		IsActive:     true,
	}

	warehouseID, err := s.warehouseRepo.Create(s.db, warehouse)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: code %s", ErrWarehouseCodeExists, warehouse.Code)
		}
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionCreate, "warehouse", &warehouseID,
		fmt.Sprintf("Created warehouse %s (%s)", warehouse.Name, warehouse.Code), nil)

	return s.warehouseRepo.GetByID(s.db, warehouseID)
}

func (s *warehouseService) GetWarehouses(onlyActive bool) ([]models.Warehouse, error) {
	warehouses, err := s.warehouseRepo.GetAll(onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouses: %w", err)
	}
	return warehouses, nil
}

func (s *warehouseService) GetWarehouseByID(warehouseID int64) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(s.db, warehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if err := s.attachProducts(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// attachProducts joins the ledger entries with their catalog products so the
// stock view carries names and SKUs.
func (s *warehouseService) attachProducts(warehouse *models.Warehouse) error {
	if len(warehouse.Stock) == 0 {
		return nil
	}
	products, err := s.productRepo.GetAll(false)
	if err != nil {
		return fmt.Errorf("failed to load products for stock view: %w", err)
	}
	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range warehouse.Stock {
		warehouse.Stock[i].Product = byID[warehouse.Stock[i].ProductID]
	}
	return nil
}

func (s *warehouseService) UpdateWarehouse(warehouseID int64, req UpdateWarehouseRequest, actorID int64) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(s.db, warehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to find warehouse for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: warehouse name cannot be empty", ErrValidation)
		}
		warehouse.Name = *req.Name
	}
	if req.Code != nil {
		if strings.TrimSpace(*req.Code) == "" {
			return nil, fmt.Errorf("%w: warehouse code cannot be empty", ErrValidation)
		}
		warehouse.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Address != nil {
		warehouse.Address = req.Address
	}
	if req.ContactPhone != nil {
		warehouse.ContactPhone = req.ContactPhone
	}
	if req.ManagerID != nil {
		warehouse.ManagerID = req.ManagerID
	}
	if req.IsActive != nil {
		warehouse.IsActive = *req.IsActive
	}

	if err := s.warehouseRepo.Update(s.db, warehouse); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: code %s", ErrWarehouseCodeExists, warehouse.Code)
		}
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionUpdate, "warehouse", &warehouseID,
		fmt.Sprintf("Updated warehouse %s (%s)", warehouse.Name, warehouse.Code), nil)

	return s.warehouseRepo.GetByID(s.db, warehouseID)
}

func (s *warehouseService) DeleteWarehouse(warehouseID int64, actorID int64) error {
	warehouse, err := s.warehouseRepo.GetByID(s.db, warehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrWarehouseNotFound
		}
		return fmt.Errorf("failed to find warehouse for deletion: %w", err)
	}

	if warehouse.HasPositiveStock() {
		return fmt.Errorf("%w: move or adjust remaining stock first", ErrWarehouseNotEmpty)
	}

	if err := s.warehouseRepo.Delete(s.db, warehouseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrWarehouseNotFound
		}
		// Adjustment or transfer history keeps referencing the warehouse.
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: warehouse appears in adjustment or transfer history", ErrWarehouseNotEmpty)
		}
		return fmt.Errorf("failed to delete warehouse: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionDelete, "warehouse", &warehouseID,
		fmt.Sprintf("Deleted warehouse %s (%s)", warehouse.Name, warehouse.Code), nil)
	return nil
}

func (s *warehouseService) MutateStock(warehouseID int64, req StockMutationRequest, actorID int64) (*models.Warehouse, error) {
	if _, err := s.productRepo.GetByID(s.db, req.ProductID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to validate product %d: %w", req.ProductID, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	warehouse, err := s.warehouseRepo.GetByIDForUpdate(tx, warehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to load warehouse %d: %w", warehouseID, err)
	}

	if err := warehouse.ApplyDelta(req.ProductID, req.Quantity, req.Operation); err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientStock):
			return nil, err
		case errors.Is(err, models.ErrNegativeQuantity),
			errors.Is(err, models.ErrReservedExceedsQuantity),
			errors.Is(err, models.ErrUnknownStockOperation):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		default:
			return nil, fmt.Errorf("failed to apply stock delta: %w", err)
		}
	}

	if err := s.warehouseRepo.SaveStock(tx, warehouse); err != nil {
		return nil, fmt.Errorf("failed to persist stock for warehouse %d: %w", warehouseID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock mutation: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionAdjust, "warehouse", &warehouseID,
		fmt.Sprintf("Stock %s of %d units for product %d", req.Operation, req.Quantity, req.ProductID),
		map[string]string{"operation": req.Operation})

	return s.warehouseRepo.GetByID(s.db, warehouseID)
}

func (s *warehouseService) AvailableStock(warehouseID, productID int64) (int, error) {
	warehouse, err := s.warehouseRepo.GetByID(s.db, warehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrWarehouseNotFound
		}
		return 0, fmt.Errorf("failed to load warehouse %d: %w", warehouseID, err)
	}
	return warehouse.AvailableStock(productID), nil
}
