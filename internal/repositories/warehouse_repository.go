package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront_backend/internal/models"

	"github.com/lib/pq"
)

// WarehouseRepository defines database operations for warehouses and their
// embedded stock ledgers. The warehouse row and its ledger rows are always
// loaded and saved together so callers can treat the aggregate as one unit.
type WarehouseRepository interface {
	Create(executor SQLExecutor, warehouse *models.Warehouse) (int64, error)
	GetByID(executor SQLExecutor, warehouseID int64) (*models.Warehouse, error)
	// GetByIDForUpdate loads the aggregate with its rows locked, for use
	// inside a transaction that is about to mutate the ledger.
	GetByIDForUpdate(executor SQLExecutor, warehouseID int64) (*models.Warehouse, error)
	GetAll(onlyActive bool) ([]models.Warehouse, error)
	Update(executor SQLExecutor, warehouse *models.Warehouse) error
	Delete(executor SQLExecutor, warehouseID int64) error
	// SaveStock persists the aggregate's full ledger: every entry is
	// upserted in one statement batch. Callers run it in the same
	// transaction as the status change that motivated the mutation.
	SaveStock(executor SQLExecutor, warehouse *models.Warehouse) error
}

type warehouseRepository struct {
	db *sql.DB
}

// NewWarehouseRepository creates a new instance of WarehouseRepository.
func NewWarehouseRepository(db *sql.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(executor SQLExecutor, warehouse *models.Warehouse) (int64, error) {
	query := `INSERT INTO warehouses (name, code, address, contact_phone, manager_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()
	var managerID sql.NullInt64
	if warehouse.ManagerID != nil {
		managerID = sql.NullInt64{Int64: *warehouse.ManagerID, Valid: true}
	}

	var warehouseID int64
	err := executor.QueryRow(query,
		warehouse.Name, warehouse.Code, warehouse.Address, warehouse.ContactPhone,
		managerID, warehouse.IsActive, currentTime, currentTime,
	).Scan(&warehouseID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating warehouse: %v", ErrDatabaseError, err)
	}
	return warehouseID, nil
}

func (r *warehouseRepository) GetByID(executor SQLExecutor, warehouseID int64) (*models.Warehouse, error) {
	return r.get(executor, warehouseID, false)
}

func (r *warehouseRepository) GetByIDForUpdate(executor SQLExecutor, warehouseID int64) (*models.Warehouse, error) {
	return r.get(executor, warehouseID, true)
}

func (r *warehouseRepository) get(executor SQLExecutor, warehouseID int64, forUpdate bool) (*models.Warehouse, error) {
	query := `SELECT id, name, code, address, contact_phone, manager_id, is_active, created_at, updated_at
	          FROM warehouses WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	warehouse := &models.Warehouse{}
	var managerID sql.NullInt64
	err := executor.QueryRow(query, warehouseID).Scan(
		&warehouse.ID, &warehouse.Name, &warehouse.Code, &warehouse.Address,
		&warehouse.ContactPhone, &managerID, &warehouse.IsActive,
		&warehouse.CreatedAt, &warehouse.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching warehouse %d: %v", ErrDatabaseError, warehouseID, err)
	}
	if managerID.Valid {
		warehouse.ManagerID = &managerID.Int64
	}

	stock, err := r.loadStock(executor, warehouseID, forUpdate)
	if err != nil {
		return nil, err
	}
	warehouse.Stock = stock
	return warehouse, nil
}

func (r *warehouseRepository) loadStock(executor SQLExecutor, warehouseID int64, forUpdate bool) ([]models.StockItem, error) {
	query := `SELECT id, warehouse_id, product_id, quantity, reserved, created_at, updated_at
	          FROM warehouse_stock WHERE warehouse_id = $1 ORDER BY product_id`
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := executor.Query(query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching stock for warehouse %d: %v", ErrDatabaseError, warehouseID, err)
	}
	defer rows.Close()

	stock := []models.StockItem{}
	for rows.Next() {
		var si models.StockItem
		if err := rows.Scan(&si.ID, &si.WarehouseID, &si.ProductID, &si.Quantity, &si.Reserved, &si.CreatedAt, &si.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning stock item: %v", ErrDatabaseError, err)
		}
		stock = append(stock, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stock items: %v", ErrDatabaseError, err)
	}
	return stock, nil
}

func (r *warehouseRepository) GetAll(onlyActive bool) ([]models.Warehouse, error) {
	query := `SELECT id, name, code, address, contact_phone, manager_id, is_active, created_at, updated_at
	          FROM warehouses`
	if onlyActive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY code"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching warehouses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	warehouses := []models.Warehouse{}
	for rows.Next() {
		var w models.Warehouse
		var managerID sql.NullInt64
		if err := rows.Scan(&w.ID, &w.Name, &w.Code, &w.Address, &w.ContactPhone, &managerID, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning warehouse: %v", ErrDatabaseError, err)
		}
		if managerID.Valid {
			w.ManagerID = &managerID.Int64
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating warehouses: %v", ErrDatabaseError, err)
	}

	for i := range warehouses {
		stock, err := r.loadStock(r.db, warehouses[i].ID, false)
		if err != nil {
			return nil, err
		}
		warehouses[i].Stock = stock
	}
	return warehouses, nil
}

func (r *warehouseRepository) Update(executor SQLExecutor, warehouse *models.Warehouse) error {
	query := `UPDATE warehouses
	          SET name = $1, code = $2, address = $3, contact_phone = $4, manager_id = $5, is_active = $6, updated_at = $7
	          WHERE id = $8`

	var managerID sql.NullInt64
	if warehouse.ManagerID != nil {
		managerID = sql.NullInt64{Int64: *warehouse.ManagerID, Valid: true}
	}

	result, err := executor.Exec(query,
		warehouse.Name, warehouse.Code, warehouse.Address, warehouse.ContactPhone,
		managerID, warehouse.IsActive, time.Now(), warehouse.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating warehouse %d: %v", ErrDatabaseError, warehouse.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *warehouseRepository) Delete(executor SQLExecutor, warehouseID int64) error {
	result, err := executor.Exec("DELETE FROM warehouses WHERE id = $1", warehouseID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKeyViolation, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting warehouse %d: %v", ErrDatabaseError, warehouseID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *warehouseRepository) SaveStock(executor SQLExecutor, warehouse *models.Warehouse) error {
	query := `INSERT INTO warehouse_stock (warehouse_id, product_id, quantity, reserved, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (warehouse_id, product_id)
	          DO UPDATE SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved, updated_at = EXCLUDED.updated_at`

	currentTime := time.Now()
	for i := range warehouse.Stock {
		si := &warehouse.Stock[i]
		if _, err := executor.Exec(query, warehouse.ID, si.ProductID, si.Quantity, si.Reserved, currentTime); err != nil {
			return fmt.Errorf("%w: saving stock for warehouse %d product %d: %v",
				ErrDatabaseError, warehouse.ID, si.ProductID, err)
		}
	}
	return nil
}
