package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
)

var (
	ErrTransferNotFound = errors.New("stock transfer not found")
	ErrSameWarehouse    = errors.New("source and destination warehouse must differ")
)

// --- Data Transfer Objects (DTOs) ---

type TransferItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gte=1"`
	Notes     *string `json:"notes"`
}

// CreateTransferRequest opens a pending transfer between two warehouses.
// No stock moves until the transfer is dispatched.
type CreateTransferRequest struct {
	FromWarehouseID int64                 `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   int64                 `json:"to_warehouse_id" binding:"required"`
	Notes           *string               `json:"notes"`
	Items           []TransferItemRequest `json:"items" binding:"required,dive"`
}

// --- TransferService Interface ---

// TransferService drives the two-phase transfer lifecycle. Dispatch debits
// the source ledger and Complete credits the destination, so in-transit units
// belong to neither warehouse. Cancel from in_transit returns the units to
// the source.
type TransferService interface {
	RequestTransfer(req CreateTransferRequest, requesterID int64) (*models.StockTransfer, error)
	GetTransfers(warehouseID *int64, status *string, page, pageSize int) ([]models.StockTransfer, int, error)
	GetTransferByID(transferID int64) (*models.StockTransfer, error)
	DispatchTransfer(transferID, actorID int64) (*models.StockTransfer, error)
	CompleteTransfer(transferID, actorID int64) (*models.StockTransfer, error)
	CancelTransfer(transferID, actorID int64) (*models.StockTransfer, error)
}

// --- transferService Implementation ---

type transferService struct {
	transferRepo  repositories.TransferRepository
	warehouseRepo repositories.WarehouseRepository
	productRepo   repositories.ProductRepository
	activity      ActivityService
	db            *sql.DB
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(
	tr repositories.TransferRepository,
	wr repositories.WarehouseRepository,
	pr repositories.ProductRepository,
	activity ActivityService,
	db *sql.DB,
) TransferService {
	return &transferService{
		transferRepo:  tr,
		warehouseRepo: wr,
		productRepo:   pr,
		activity:      activity,
		db:            db,
	}
}

func (s *transferService) RequestTransfer(req CreateTransferRequest, requesterID int64) (*models.StockTransfer, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, ErrSameWarehouse
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: transfer requires at least one item", ErrValidation)
	}

	for _, warehouseID := range []int64{req.FromWarehouseID, req.ToWarehouseID} {
		if _, err := s.warehouseRepo.GetByID(s.db, warehouseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: warehouse %d", ErrWarehouseNotFound, warehouseID)
			}
			return nil, fmt.Errorf("failed to load warehouse %d: %w", warehouseID, err)
		}
	}

	items := make([]models.TransferItem, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, itemReq := range req.Items {
		if itemReq.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for product %d must be at least 1", ErrValidation, itemReq.ProductID)
		}
		if seen[itemReq.ProductID] {
			return nil, fmt.Errorf("%w: product %d listed more than once", ErrValidation, itemReq.ProductID)
		}
		seen[itemReq.ProductID] = true
		if _, err := s.productRepo.GetByID(s.db, itemReq.ProductID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to validate product %d: %w", itemReq.ProductID, err)
		}
		items = append(items, models.TransferItem{
			ProductID: itemReq.ProductID,
			Quantity:  itemReq.Quantity,
			Notes:     itemReq.Notes,
		})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	transferNumber, err := s.transferRepo.NextTransferNumber(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve transfer number: %w", err)
	}

	transfer := &models.StockTransfer{
		TransferNumber:  transferNumber,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Status:          models.TransferStatusPending,
		Notes:           req.Notes,
		RequestedBy:     requesterID,
		Items:           items,
	}
	transferID, err := s.transferRepo.Create(tx, transfer)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	s.activity.Record(&requesterID, models.ActivityActionCreate, "stock_transfer", &transferID,
		fmt.Sprintf("Requested transfer %s from warehouse %d to warehouse %d", transferNumber, req.FromWarehouseID, req.ToWarehouseID),
		map[string]string{"transfer_number": transferNumber})

	return s.transferRepo.GetByID(s.db, transferID)
}

func (s *transferService) GetTransfers(warehouseID *int64, status *string, page, pageSize int) ([]models.StockTransfer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	transfers, totalCount, err := s.transferRepo.GetAll(warehouseID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transfers: %w", err)
	}
	return transfers, totalCount, nil
}

func (s *transferService) GetTransferByID(transferID int64) (*models.StockTransfer, error) {
	transfer, err := s.transferRepo.GetByID(s.db, transferID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return transfer, nil
}

// DispatchTransfer debits every item from the source warehouse and moves the
// transfer to in_transit. Either all lines debit or none do.
func (s *transferService) DispatchTransfer(transferID, actorID int64) (*models.StockTransfer, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	transfer, err := s.lockTransfer(tx, transferID, models.TransferStatusInTransit)
	if err != nil {
		return nil, err
	}

	source, err := s.warehouseRepo.GetByIDForUpdate(tx, transfer.FromWarehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: source warehouse %d", ErrWarehouseNotFound, transfer.FromWarehouseID)
		}
		return nil, fmt.Errorf("failed to load source warehouse %d: %w", transfer.FromWarehouseID, err)
	}

	if err := source.DebitAll(transfer.Items); err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		return nil, fmt.Errorf("failed to debit source warehouse %d: %w", source.ID, err)
	}
	if err := s.warehouseRepo.SaveStock(tx, source); err != nil {
		return nil, fmt.Errorf("failed to persist stock for warehouse %d: %w", source.ID, err)
	}

	now := time.Now()
	transfer.Status = models.TransferStatusInTransit
	transfer.DispatchedBy = &actorID
	transfer.DispatchedAt = &now
	if err := s.transferRepo.SetStatus(tx, transfer); err != nil {
		return nil, fmt.Errorf("failed to mark transfer %d in transit: %w", transferID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer dispatch: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionDispatch, "stock_transfer", &transferID,
		fmt.Sprintf("Dispatched transfer %s from warehouse %s", transfer.TransferNumber, source.Code), nil)

	return s.transferRepo.GetByID(s.db, transferID)
}

// CompleteTransfer credits every item to the destination warehouse. If the
// destination no longer exists the transfer stays in_transit so the goods are
// not silently lost.
func (s *transferService) CompleteTransfer(transferID, actorID int64) (*models.StockTransfer, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	transfer, err := s.lockTransfer(tx, transferID, models.TransferStatusCompleted)
	if err != nil {
		return nil, err
	}

	destination, err := s.warehouseRepo.GetByIDForUpdate(tx, transfer.ToWarehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: destination warehouse %d; transfer remains in transit", ErrWarehouseNotFound, transfer.ToWarehouseID)
		}
		return nil, fmt.Errorf("failed to load destination warehouse %d: %w", transfer.ToWarehouseID, err)
	}

	if err := destination.CreditAll(transfer.Items); err != nil {
		return nil, fmt.Errorf("failed to credit destination warehouse %d: %w", destination.ID, err)
	}
	if err := s.warehouseRepo.SaveStock(tx, destination); err != nil {
		return nil, fmt.Errorf("failed to persist stock for warehouse %d: %w", destination.ID, err)
	}

	now := time.Now()
	transfer.Status = models.TransferStatusCompleted
	transfer.CompletedBy = &actorID
	transfer.CompletedAt = &now
	if err := s.transferRepo.SetStatus(tx, transfer); err != nil {
		return nil, fmt.Errorf("failed to mark transfer %d completed: %w", transferID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer completion: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionComplete, "stock_transfer", &transferID,
		fmt.Sprintf("Completed transfer %s into warehouse %s", transfer.TransferNumber, destination.Code), nil)

	return s.transferRepo.GetByID(s.db, transferID)
}

// CancelTransfer aborts a pending or in-transit transfer. A pending cancel is
// pure bookkeeping; an in-transit cancel credits the debited units back to
// the source warehouse.
func (s *transferService) CancelTransfer(transferID, actorID int64) (*models.StockTransfer, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	transfer, err := s.lockTransfer(tx, transferID, models.TransferStatusCancelled)
	if err != nil {
		return nil, err
	}

	if transfer.Status == models.TransferStatusInTransit {
		source, err := s.warehouseRepo.GetByIDForUpdate(tx, transfer.FromWarehouseID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: source warehouse %d; transfer remains in transit", ErrWarehouseNotFound, transfer.FromWarehouseID)
			}
			return nil, fmt.Errorf("failed to load source warehouse %d: %w", transfer.FromWarehouseID, err)
		}
		if err := source.CreditAll(transfer.Items); err != nil {
			return nil, fmt.Errorf("failed to return stock to warehouse %d: %w", source.ID, err)
		}
		if err := s.warehouseRepo.SaveStock(tx, source); err != nil {
			return nil, fmt.Errorf("failed to persist stock for warehouse %d: %w", source.ID, err)
		}
	}

	now := time.Now()
	transfer.Status = models.TransferStatusCancelled
	transfer.CancelledBy = &actorID
	transfer.CancelledAt = &now
	if err := s.transferRepo.SetStatus(tx, transfer); err != nil {
		return nil, fmt.Errorf("failed to mark transfer %d cancelled: %w", transferID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer cancellation: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionCancel, "stock_transfer", &transferID,
		fmt.Sprintf("Cancelled transfer %s", transfer.TransferNumber), nil)

	return s.transferRepo.GetByID(s.db, transferID)
}

// lockTransfer loads the transfer under a row lock and verifies the requested
// transition is legal from its current status.
func (s *transferService) lockTransfer(tx *sql.Tx, transferID int64, target string) (*models.StockTransfer, error) {
	transfer, err := s.transferRepo.GetByIDForUpdate(tx, transferID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to load transfer %d: %w", transferID, err)
	}
	if !transfer.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot move transfer from %s to %s", ErrInvalidState, transfer.Status, target)
	}
	return transfer, nil
}
