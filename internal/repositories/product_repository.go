package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront_backend/internal/models"

	"github.com/lib/pq"
)

// ProductRepository defines database operations for the product lookup the
// inventory core consumes: id -> name, SKU, unit price, low-stock threshold.
type ProductRepository interface {
	Create(executor SQLExecutor, product *models.Product) (int64, error)
	GetByID(executor SQLExecutor, productID int64) (*models.Product, error)
	GetAll(onlyActive bool) ([]models.Product, error)
	Update(executor SQLExecutor, product *models.Product) error
	Delete(executor SQLExecutor, productID int64) error
	// CountStockReferences returns how many ledger entries with positive
	// quantity reference the product across all warehouses.
	CountStockReferences(executor SQLExecutor, productID int64) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, sku, description, unit_price, low_stock_threshold, is_active, created_at, updated_at"

func scanProduct(row *sql.Row) (*models.Product, error) {
	p := &models.Product{}
	var threshold sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.UnitPrice, &threshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if threshold.Valid {
		t := int(threshold.Int64)
		p.LowStockThreshold = &t
	}
	return p, nil
}

func (r *productRepository) Create(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, sku, description, unit_price, low_stock_threshold, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	          RETURNING id`

	var threshold sql.NullInt64
	if product.LowStockThreshold != nil {
		threshold = sql.NullInt64{Int64: int64(*product.LowStockThreshold), Valid: true}
	}

	var productID int64
	err := executor.QueryRow(query,
		product.Name, product.SKU, product.Description, product.UnitPrice,
		threshold, product.IsActive, time.Now(),
	).Scan(&productID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return productID, nil
}

func (r *productRepository) GetByID(executor SQLExecutor, productID int64) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"
	product, err := scanProduct(executor.QueryRow(query, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching product %d: %v", ErrDatabaseError, productID, err)
	}
	return product, nil
}

func (r *productRepository) GetAll(onlyActive bool) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	if onlyActive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY sku"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		var threshold sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.UnitPrice, &threshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		if threshold.Valid {
			t := int(threshold.Int64)
			p.LowStockThreshold = &t
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating products: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) Update(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products
	          SET name = $1, sku = $2, description = $3, unit_price = $4, low_stock_threshold = $5, is_active = $6, updated_at = $7
	          WHERE id = $8`

	var threshold sql.NullInt64
	if product.LowStockThreshold != nil {
		threshold = sql.NullInt64{Int64: int64(*product.LowStockThreshold), Valid: true}
	}

	result, err := executor.Exec(query,
		product.Name, product.SKU, product.Description, product.UnitPrice,
		threshold, product.IsActive, time.Now(), product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating product %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(executor SQLExecutor, productID int64) error {
	result, err := executor.Exec("DELETE FROM products WHERE id = $1", productID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKeyViolation, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting product %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) CountStockReferences(executor SQLExecutor, productID int64) (int, error) {
	var count int
	err := executor.QueryRow(
		"SELECT COUNT(*) FROM warehouse_stock WHERE product_id = $1 AND quantity > 0",
		productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting stock references for product %d: %v", ErrDatabaseError, productID, err)
	}
	return count, nil
}
