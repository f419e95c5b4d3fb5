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
	ErrAdjustmentNotFound = errors.New("inventory adjustment not found")
)

// --- Data Transfer Objects (DTOs) ---

// AdjustmentLineRequest is one proposed correction line. PreviousQuantity is
// the quantity the requester observed; it must still match the ledger when
// the proposal is created, and again when it is approved.
type AdjustmentLineRequest struct {
	ProductID        int64 `json:"product_id" binding:"required"`
	PreviousQuantity int   `json:"previous_quantity"`
	NewQuantity      int   `json:"new_quantity" binding:"gte=0"`
	Difference       int   `json:"difference"`
}

// CreateAdjustmentRequest proposes a set of quantity corrections for one warehouse.
type CreateAdjustmentRequest struct {
	WarehouseID int64                   `json:"warehouse_id" binding:"required"`
	Reason      string                  `json:"reason" binding:"required"`
	Notes       *string                 `json:"notes"`
	Lines       []AdjustmentLineRequest `json:"lines" binding:"required,dive"`
}

// --- AdjustmentService Interface ---

// AdjustmentService runs the propose/approve/reject lifecycle for inventory
// corrections. Approval is the only path that mutates a warehouse ledger, and
// it re-validates every line's previous quantity against the live ledger so a
// stale proposal cannot clobber a quantity that changed after it was filed.
type AdjustmentService interface {
	ProposeAdjustment(req CreateAdjustmentRequest, requesterID int64) (*models.InventoryAdjustment, error)
	GetAdjustments(warehouseID *int64, status *string, page, pageSize int) ([]models.InventoryAdjustment, int, error)
	GetAdjustmentByID(adjustmentID int64) (*models.InventoryAdjustment, error)
	ApproveAdjustment(adjustmentID, approverID int64) (*models.InventoryAdjustment, error)
	RejectAdjustment(adjustmentID, approverID int64) (*models.InventoryAdjustment, error)
	// DeleteAdjustment removes a pending or rejected record; approved
	// adjustments are permanent history.
	DeleteAdjustment(adjustmentID, actorID int64) error
}

// --- adjustmentService Implementation ---

type adjustmentService struct {
	adjustmentRepo repositories.AdjustmentRepository
	warehouseRepo  repositories.WarehouseRepository
	productRepo    repositories.ProductRepository
	activity       ActivityService
	db             *sql.DB
}

// NewAdjustmentService creates a new instance of AdjustmentService.
func NewAdjustmentService(
	ar repositories.AdjustmentRepository,
	wr repositories.WarehouseRepository,
	pr repositories.ProductRepository,
	activity ActivityService,
	db *sql.DB,
) AdjustmentService {
	return &adjustmentService{
		adjustmentRepo: ar,
		warehouseRepo:  wr,
		productRepo:    pr,
		activity:       activity,
		db:             db,
	}
}

func (s *adjustmentService) ProposeAdjustment(req CreateAdjustmentRequest, requesterID int64) (*models.InventoryAdjustment, error) {
	if !models.ValidAdjustmentReason(req.Reason) {
		return nil, fmt.Errorf("%w: unknown adjustment reason %q", ErrValidation, req.Reason)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: adjustment requires at least one line", ErrValidation)
	}

	warehouse, err := s.warehouseRepo.GetByID(s.db, req.WarehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to load warehouse %d: %w", req.WarehouseID, err)
	}

	lines := make([]models.AdjustmentLine, 0, len(req.Lines))
	for _, lineReq := range req.Lines {
		if lineReq.NewQuantity < 0 {
			return nil, fmt.Errorf("%w: new quantity for product %d cannot be negative", ErrValidation, lineReq.ProductID)
		}
		if _, err := s.productRepo.GetByID(s.db, lineReq.ProductID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, lineReq.ProductID)
			}
			return nil, fmt.Errorf("failed to validate product %d: %w", lineReq.ProductID, err)
		}

		line := models.AdjustmentLine{
			ProductID:        lineReq.ProductID,
			PreviousQuantity: lineReq.PreviousQuantity,
			NewQuantity:      lineReq.NewQuantity,
			Difference:       lineReq.Difference,
		}
		if !line.Consistent() {
			return nil, fmt.Errorf("%w: difference for product %d must equal new minus previous quantity",
				ErrValidation, lineReq.ProductID)
		}
		// Optimistic concurrency at the line level: the requester must have
		// seen the quantity that is still in the ledger.
		if current := warehouse.Quantity(lineReq.ProductID); current != lineReq.PreviousQuantity {
			return nil, fmt.Errorf("%w: product %d quantity is %d, proposal was based on %d",
				ErrValidation, lineReq.ProductID, current, lineReq.PreviousQuantity)
		}
		lines = append(lines, line)
	}

	adjustment := &models.InventoryAdjustment{
		WarehouseID: req.WarehouseID,
		Reason:      req.Reason,
		Notes:       req.Notes,
		Status:      models.AdjustmentStatusPending,
		RequestedBy: requesterID,
		Lines:       lines,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	adjustmentID, err := s.adjustmentRepo.Create(tx, adjustment)
	if err != nil {
		return nil, fmt.Errorf("failed to create adjustment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	s.activity.Record(&requesterID, models.ActivityActionCreate, "inventory_adjustment", &adjustmentID,
		fmt.Sprintf("Proposed %s adjustment with %d line(s) for warehouse %s", req.Reason, len(lines), warehouse.Code),
		map[string]string{"reason": req.Reason})

	return s.adjustmentRepo.GetByID(s.db, adjustmentID)
}

func (s *adjustmentService) GetAdjustments(warehouseID *int64, status *string, page, pageSize int) ([]models.InventoryAdjustment, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	adjustments, totalCount, err := s.adjustmentRepo.GetAll(warehouseID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get adjustments: %w", err)
	}
	return adjustments, totalCount, nil
}

func (s *adjustmentService) GetAdjustmentByID(adjustmentID int64) (*models.InventoryAdjustment, error) {
	adjustment, err := s.adjustmentRepo.GetByID(s.db, adjustmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAdjustmentNotFound
		}
		return nil, fmt.Errorf("failed to get adjustment: %w", err)
	}
	return adjustment, nil
}

func (s *adjustmentService) ApproveAdjustment(adjustmentID, approverID int64) (*models.InventoryAdjustment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	adjustment, err := s.adjustmentRepo.GetByID(tx, adjustmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAdjustmentNotFound
		}
		return nil, fmt.Errorf("failed to load adjustment %d: %w", adjustmentID, err)
	}
	if !adjustment.CanReview() {
		return nil, fmt.Errorf("%w: adjustment is %s", ErrInvalidState, adjustment.Status)
	}

	warehouse, err := s.warehouseRepo.GetByIDForUpdate(tx, adjustment.WarehouseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to load warehouse %d: %w", adjustment.WarehouseID, err)
	}

	// Re-validate against the live ledger before applying: the quantity may
	// have moved between proposal and approval, and an approval must not
	// clobber such a change.
	for _, line := range adjustment.Lines {
		if current := warehouse.Quantity(line.ProductID); current != line.PreviousQuantity {
			return nil, fmt.Errorf("%w: product %d quantity is now %d, adjustment was based on %d; re-propose",
				ErrValidation, line.ProductID, current, line.PreviousQuantity)
		}
	}

	// Authoritative correction: write the counted quantity directly rather
	// than applying a relative delta.
	for _, line := range adjustment.Lines {
		if err := warehouse.SetQuantity(line.ProductID, line.NewQuantity); err != nil {
			if errors.Is(err, models.ErrReservedExceedsQuantity) || errors.Is(err, models.ErrNegativeQuantity) {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return nil, fmt.Errorf("failed to apply adjustment line for product %d: %w", line.ProductID, err)
		}
	}

	if err := s.warehouseRepo.SaveStock(tx, warehouse); err != nil {
		return nil, fmt.Errorf("failed to persist stock for warehouse %d: %w", warehouse.ID, err)
	}
	if err := s.adjustmentRepo.SetReviewed(tx, adjustmentID, models.AdjustmentStatusApproved, approverID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark adjustment %d approved: %w", adjustmentID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment approval: %w", err)
	}

	s.activity.Record(&approverID, models.ActivityActionApprove, "inventory_adjustment", &adjustmentID,
		fmt.Sprintf("Approved %s adjustment for warehouse %s", adjustment.Reason, warehouse.Code), nil)

	return s.adjustmentRepo.GetByID(s.db, adjustmentID)
}

func (s *adjustmentService) RejectAdjustment(adjustmentID, approverID int64) (*models.InventoryAdjustment, error) {
	adjustment, err := s.adjustmentRepo.GetByID(s.db, adjustmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAdjustmentNotFound
		}
		return nil, fmt.Errorf("failed to load adjustment %d: %w", adjustmentID, err)
	}
	if !adjustment.CanReview() {
		return nil, fmt.Errorf("%w: adjustment is %s", ErrInvalidState, adjustment.Status)
	}

	if err := s.adjustmentRepo.SetReviewed(s.db, adjustmentID, models.AdjustmentStatusRejected, approverID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the race with another reviewer.
			return nil, fmt.Errorf("%w: adjustment is no longer pending", ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to mark adjustment %d rejected: %w", adjustmentID, err)
	}

	s.activity.Record(&approverID, models.ActivityActionReject, "inventory_adjustment", &adjustmentID,
		fmt.Sprintf("Rejected %s adjustment for warehouse %d", adjustment.Reason, adjustment.WarehouseID), nil)

	return s.adjustmentRepo.GetByID(s.db, adjustmentID)
}

func (s *adjustmentService) DeleteAdjustment(adjustmentID, actorID int64) error {
	adjustment, err := s.adjustmentRepo.GetByID(s.db, adjustmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAdjustmentNotFound
		}
		return fmt.Errorf("failed to load adjustment %d: %w", adjustmentID, err)
	}
	if !adjustment.CanDelete() {
		return fmt.Errorf("%w: approved adjustments are permanent history", ErrInvalidState)
	}

	if err := s.adjustmentRepo.Delete(s.db, adjustmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAdjustmentNotFound
		}
		return fmt.Errorf("failed to delete adjustment %d: %w", adjustmentID, err)
	}

	s.activity.Record(&actorID, models.ActivityActionDelete, "inventory_adjustment", &adjustmentID,
		fmt.Sprintf("Deleted %s adjustment for warehouse %d", adjustment.Reason, adjustment.WarehouseID), nil)
	return nil
}
