package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront_backend/internal/models"
)

// TransferRepository defines database operations for stock transfers and
// their items. Transfer numbers come from a dedicated sequence so they stay
// strictly increasing even across concurrent requests.
type TransferRepository interface {
	// NextTransferNumber reserves the next sequential transfer number.
	NextTransferNumber(executor SQLExecutor) (string, error)
	Create(executor SQLExecutor, transfer *models.StockTransfer) (int64, error)
	GetByID(executor SQLExecutor, transferID int64) (*models.StockTransfer, error)
	// GetByIDForUpdate locks the transfer row so concurrent transitions on
	// the same transfer serialize.
	GetByIDForUpdate(executor SQLExecutor, transferID int64) (*models.StockTransfer, error)
	GetAll(warehouseID *int64, status *string, page, pageSize int) ([]models.StockTransfer, int, error)
	// SetStatus records a state transition together with the acting user.
	SetStatus(executor SQLExecutor, transfer *models.StockTransfer) error
	CountByStatus(executor SQLExecutor, status string) (int, error)
}

type transferRepository struct {
	db *sql.DB
}

// NewTransferRepository creates a new instance of TransferRepository.
func NewTransferRepository(db *sql.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) NextTransferNumber(executor SQLExecutor) (string, error) {
	var seq int64
	if err := executor.QueryRow("SELECT nextval('stock_transfer_number_seq')").Scan(&seq); err != nil {
		return "", fmt.Errorf("%w: reserving transfer number: %v", ErrDatabaseError, err)
	}
	return models.FormatTransferNumber(seq), nil
}

func (r *transferRepository) Create(executor SQLExecutor, transfer *models.StockTransfer) (int64, error) {
	query := `INSERT INTO stock_transfers (transfer_number, from_warehouse_id, to_warehouse_id, status, notes, requested_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	          RETURNING id`

	var transferID int64
	err := executor.QueryRow(query,
		transfer.TransferNumber, transfer.FromWarehouseID, transfer.ToWarehouseID,
		transfer.Status, transfer.Notes, transfer.RequestedBy, time.Now(),
	).Scan(&transferID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating transfer: %v", ErrDatabaseError, err)
	}

	itemQuery := `INSERT INTO stock_transfer_items (transfer_id, product_id, quantity, notes)
	              VALUES ($1, $2, $3, $4)
	              RETURNING id`
	for i := range transfer.Items {
		item := &transfer.Items[i]
		err := executor.QueryRow(itemQuery, transferID, item.ProductID, item.Quantity, item.Notes).Scan(&item.ID)
		if err != nil {
			return 0, fmt.Errorf("%w: creating transfer item for product %d: %v", ErrDatabaseError, item.ProductID, err)
		}
		item.TransferID = transferID
	}

	transfer.ID = transferID
	return transferID, nil
}

func (r *transferRepository) GetByID(executor SQLExecutor, transferID int64) (*models.StockTransfer, error) {
	return r.get(executor, transferID, false)
}

func (r *transferRepository) GetByIDForUpdate(executor SQLExecutor, transferID int64) (*models.StockTransfer, error) {
	return r.get(executor, transferID, true)
}

func (r *transferRepository) get(executor SQLExecutor, transferID int64, forUpdate bool) (*models.StockTransfer, error) {
	query := `SELECT id, transfer_number, from_warehouse_id, to_warehouse_id, status, notes, requested_by,
	                 dispatched_by, dispatched_at, completed_by, completed_at, cancelled_by, cancelled_at,
	                 created_at, updated_at
	          FROM stock_transfers WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	t := &models.StockTransfer{}
	var dispatchedBy, completedBy, cancelledBy sql.NullInt64
	var dispatchedAt, completedAt, cancelledAt sql.NullTime
	err := executor.QueryRow(query, transferID).Scan(
		&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &t.Status, &t.Notes, &t.RequestedBy,
		&dispatchedBy, &dispatchedAt, &completedBy, &completedAt, &cancelledBy, &cancelledAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching transfer %d: %v", ErrDatabaseError, transferID, err)
	}
	if dispatchedBy.Valid {
		t.DispatchedBy = &dispatchedBy.Int64
	}
	if dispatchedAt.Valid {
		t.DispatchedAt = &dispatchedAt.Time
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.Int64
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if cancelledBy.Valid {
		t.CancelledBy = &cancelledBy.Int64
	}
	if cancelledAt.Valid {
		t.CancelledAt = &cancelledAt.Time
	}

	items, err := r.loadItems(executor, transferID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *transferRepository) loadItems(executor SQLExecutor, transferID int64) ([]models.TransferItem, error) {
	query := `SELECT i.id, i.transfer_id, i.product_id, i.quantity, i.notes, p.name, p.sku
	          FROM stock_transfer_items i
	          JOIN products p ON p.id = i.product_id
	          WHERE i.transfer_id = $1
	          ORDER BY i.id`

	rows, err := executor.Query(query, transferID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching transfer items for %d: %v", ErrDatabaseError, transferID, err)
	}
	defer rows.Close()

	items := []models.TransferItem{}
	for rows.Next() {
		var item models.TransferItem
		var productName, productSKU string
		if err := rows.Scan(&item.ID, &item.TransferID, &item.ProductID, &item.Quantity, &item.Notes,
			&productName, &productSKU); err != nil {
			return nil, fmt.Errorf("%w: scanning transfer item: %v", ErrDatabaseError, err)
		}
		item.Product = &models.Product{ID: item.ProductID, Name: productName, SKU: productSKU}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transfer items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *transferRepository) GetAll(warehouseID *int64, status *string, page, pageSize int) ([]models.StockTransfer, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT t.id, t.transfer_number, t.from_warehouse_id, t.to_warehouse_id, t.status, t.notes,
	    t.requested_by, t.dispatched_by, t.dispatched_at, t.completed_by, t.completed_at,
	    t.cancelled_by, t.cancelled_at, t.created_at, t.updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM stock_transfers t`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if warehouseID != nil {
		conditions = append(conditions, fmt.Sprintf("(t.from_warehouse_id = $%d OR t.to_warehouse_id = $%d)", argCount, argCount))
		args = append(args, *warehouseID)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY t.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: fetching transfers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	transfers := []models.StockTransfer{}
	totalCount := 0
	for rows.Next() {
		var t models.StockTransfer
		var dispatchedBy, completedBy, cancelledBy sql.NullInt64
		var dispatchedAt, completedAt, cancelledAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &t.Status, &t.Notes,
			&t.RequestedBy, &dispatchedBy, &dispatchedAt, &completedBy, &completedAt,
			&cancelledBy, &cancelledAt, &t.CreatedAt, &t.UpdatedAt,
			&totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning transfer: %v", ErrDatabaseError, err)
		}
		if dispatchedBy.Valid {
			t.DispatchedBy = &dispatchedBy.Int64
		}
		if dispatchedAt.Valid {
			t.DispatchedAt = &dispatchedAt.Time
		}
		if completedBy.Valid {
			t.CompletedBy = &completedBy.Int64
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		if cancelledBy.Valid {
			t.CancelledBy = &cancelledBy.Int64
		}
		if cancelledAt.Valid {
			t.CancelledAt = &cancelledAt.Time
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transfers: %v", ErrDatabaseError, err)
	}
	return transfers, totalCount, nil
}

func (r *transferRepository) SetStatus(executor SQLExecutor, transfer *models.StockTransfer) error {
	query := `UPDATE stock_transfers
	          SET status = $1, dispatched_by = $2, dispatched_at = $3, completed_by = $4, completed_at = $5,
	              cancelled_by = $6, cancelled_at = $7, updated_at = $8
	          WHERE id = $9`

	result, err := executor.Exec(query,
		transfer.Status,
		nullInt64(transfer.DispatchedBy), nullTime(transfer.DispatchedAt),
		nullInt64(transfer.CompletedBy), nullTime(transfer.CompletedAt),
		nullInt64(transfer.CancelledBy), nullTime(transfer.CancelledAt),
		time.Now(), transfer.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating transfer %d status: %v", ErrDatabaseError, transfer.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transferRepository) CountByStatus(executor SQLExecutor, status string) (int, error) {
	var count int
	err := executor.QueryRow("SELECT COUNT(*) FROM stock_transfers WHERE status = $1", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting transfers by status %s: %v", ErrDatabaseError, status, err)
	}
	return count, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
