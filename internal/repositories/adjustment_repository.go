package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront_backend/internal/models"
)

// AdjustmentRepository defines database operations for inventory adjustments
// and their lines.
type AdjustmentRepository interface {
	// Create persists the adjustment header and all lines.
	Create(executor SQLExecutor, adjustment *models.InventoryAdjustment) (int64, error)
	GetByID(executor SQLExecutor, adjustmentID int64) (*models.InventoryAdjustment, error)
	GetAll(warehouseID *int64, status *string, page, pageSize int) ([]models.InventoryAdjustment, int, error)
	// SetReviewed records the approve/reject decision. It only touches rows
	// still in pending state so a decision can land at most once.
	SetReviewed(executor SQLExecutor, adjustmentID int64, status string, approverID int64, reviewedAt time.Time) error
	Delete(executor SQLExecutor, adjustmentID int64) error
	CountByStatus(executor SQLExecutor, status string) (int, error)
}

type adjustmentRepository struct {
	db *sql.DB
}

// NewAdjustmentRepository creates a new instance of AdjustmentRepository.
func NewAdjustmentRepository(db *sql.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(executor SQLExecutor, adjustment *models.InventoryAdjustment) (int64, error) {
	query := `INSERT INTO inventory_adjustments (warehouse_id, reason, notes, status, requested_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $6)
	          RETURNING id`

	var adjustmentID int64
	err := executor.QueryRow(query,
		adjustment.WarehouseID, adjustment.Reason, adjustment.Notes,
		adjustment.Status, adjustment.RequestedBy, time.Now(),
	).Scan(&adjustmentID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating adjustment: %v", ErrDatabaseError, err)
	}

	lineQuery := `INSERT INTO inventory_adjustment_lines (adjustment_id, product_id, previous_quantity, new_quantity, difference)
	              VALUES ($1, $2, $3, $4, $5)
	              RETURNING id`
	for i := range adjustment.Lines {
		line := &adjustment.Lines[i]
		err := executor.QueryRow(lineQuery,
			adjustmentID, line.ProductID, line.PreviousQuantity, line.NewQuantity, line.Difference,
		).Scan(&line.ID)
		if err != nil {
			return 0, fmt.Errorf("%w: creating adjustment line for product %d: %v", ErrDatabaseError, line.ProductID, err)
		}
		line.AdjustmentID = adjustmentID
	}

	adjustment.ID = adjustmentID
	return adjustmentID, nil
}

func (r *adjustmentRepository) GetByID(executor SQLExecutor, adjustmentID int64) (*models.InventoryAdjustment, error) {
	query := `SELECT id, warehouse_id, reason, notes, status, requested_by, approved_by, approved_at, created_at, updated_at
	          FROM inventory_adjustments WHERE id = $1`

	adj := &models.InventoryAdjustment{}
	var approvedBy sql.NullInt64
	var approvedAt sql.NullTime
	err := executor.QueryRow(query, adjustmentID).Scan(
		&adj.ID, &adj.WarehouseID, &adj.Reason, &adj.Notes, &adj.Status,
		&adj.RequestedBy, &approvedBy, &approvedAt, &adj.CreatedAt, &adj.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching adjustment %d: %v", ErrDatabaseError, adjustmentID, err)
	}
	if approvedBy.Valid {
		adj.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		adj.ApprovedAt = &approvedAt.Time
	}

	lines, err := r.loadLines(executor, adjustmentID)
	if err != nil {
		return nil, err
	}
	adj.Lines = lines
	return adj, nil
}

func (r *adjustmentRepository) loadLines(executor SQLExecutor, adjustmentID int64) ([]models.AdjustmentLine, error) {
	query := `SELECT l.id, l.adjustment_id, l.product_id, l.previous_quantity, l.new_quantity, l.difference,
	                 p.name, p.sku
	          FROM inventory_adjustment_lines l
	          JOIN products p ON p.id = l.product_id
	          WHERE l.adjustment_id = $1
	          ORDER BY l.id`

	rows, err := executor.Query(query, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching adjustment lines for %d: %v", ErrDatabaseError, adjustmentID, err)
	}
	defer rows.Close()

	lines := []models.AdjustmentLine{}
	for rows.Next() {
		var line models.AdjustmentLine
		var productName, productSKU string
		if err := rows.Scan(&line.ID, &line.AdjustmentID, &line.ProductID,
			&line.PreviousQuantity, &line.NewQuantity, &line.Difference,
			&productName, &productSKU); err != nil {
			return nil, fmt.Errorf("%w: scanning adjustment line: %v", ErrDatabaseError, err)
		}
		line.Product = &models.Product{ID: line.ProductID, Name: productName, SKU: productSKU}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating adjustment lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

func (r *adjustmentRepository) GetAll(warehouseID *int64, status *string, page, pageSize int) ([]models.InventoryAdjustment, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT a.id, a.warehouse_id, a.reason, a.notes, a.status, a.requested_by,
	    a.approved_by, a.approved_at, a.created_at, a.updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_adjustments a`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if warehouseID != nil {
		conditions = append(conditions, fmt.Sprintf("a.warehouse_id = $%d", argCount))
		args = append(args, *warehouseID)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: fetching adjustments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	adjustments := []models.InventoryAdjustment{}
	totalCount := 0
	for rows.Next() {
		var adj models.InventoryAdjustment
		var approvedBy sql.NullInt64
		var approvedAt sql.NullTime
		if err := rows.Scan(&adj.ID, &adj.WarehouseID, &adj.Reason, &adj.Notes, &adj.Status,
			&adj.RequestedBy, &approvedBy, &approvedAt, &adj.CreatedAt, &adj.UpdatedAt,
			&totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning adjustment: %v", ErrDatabaseError, err)
		}
		if approvedBy.Valid {
			adj.ApprovedBy = &approvedBy.Int64
		}
		if approvedAt.Valid {
			adj.ApprovedAt = &approvedAt.Time
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating adjustments: %v", ErrDatabaseError, err)
	}
	return adjustments, totalCount, nil
}

func (r *adjustmentRepository) SetReviewed(executor SQLExecutor, adjustmentID int64, status string, approverID int64, reviewedAt time.Time) error {
	query := `UPDATE inventory_adjustments
	          SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
	          WHERE id = $4 AND status = $5`

	result, err := executor.Exec(query, status, approverID, reviewedAt, adjustmentID, models.AdjustmentStatusPending)
	if err != nil {
		return fmt.Errorf("%w: reviewing adjustment %d: %v", ErrDatabaseError, adjustmentID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adjustmentRepository) Delete(executor SQLExecutor, adjustmentID int64) error {
	result, err := executor.Exec("DELETE FROM inventory_adjustments WHERE id = $1", adjustmentID)
	if err != nil {
		return fmt.Errorf("%w: deleting adjustment %d: %v", ErrDatabaseError, adjustmentID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adjustmentRepository) CountByStatus(executor SQLExecutor, status string) (int, error) {
	var count int
	err := executor.QueryRow("SELECT COUNT(*) FROM inventory_adjustments WHERE status = $1", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting adjustments by status %s: %v", ErrDatabaseError, status, err)
	}
	return count, nil
}
