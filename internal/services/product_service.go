package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

var (
	ErrProductSKUExists  = errors.New("product with this SKU already exists")
	ErrProductReferenced = errors.New("product still has stock in one or more warehouses")
)

// --- Data Transfer Objects (DTOs) ---

type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required"`
	SKU               string          `json:"sku" binding:"required"`
	Description       *string         `json:"description"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LowStockThreshold *int            `json:"low_stock_threshold"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	SKU               *string          `json:"sku"`
	Description       *string          `json:"description"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	IsActive          *bool            `json:"is_active"`
}

// --- ProductService Interface ---

// ProductService manages the catalog entries the inventory ledgers refer to.
type ProductService interface {
	CreateProduct(req CreateProductRequest, actorID int64) (*models.Product, error)
	GetProducts(onlyActive bool) ([]models.Product, error)
	GetProductByID(productID int64) (*models.Product, error)
	UpdateProduct(productID int64, req UpdateProductRequest, actorID int64) (*models.Product, error)
	// DeleteProduct refuses while any warehouse still holds positive
	// quantity of the product.
	DeleteProduct(productID, actorID int64) error
}

// --- productService Implementation ---

type productService struct {
	productRepo repositories.ProductRepository
	activity    ActivityService
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, activity ActivityService, db *sql.DB) ProductService {
	return &productService{productRepo: pr, activity: activity, db: db}
}

func (s *productService) CreateProduct(req CreateProductRequest, actorID int64) (*models.Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" {
		return nil, fmt.Errorf("%w: SKU is required", ErrValidation)
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	if req.LowStockThreshold != nil && *req.LowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: low stock threshold cannot be negative", ErrValidation)
	}

	product := &models.Product{
		Name:              strings.TrimSpace(req.Name),
		SKU:               sku,
		Description:       req.Description,
		UnitPrice:         req.UnitPrice,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}

	productID, err := s.productRepo.Create(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductSKUExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.activity.Record(&actorID, models.ActivityActionCreate, "product", &productID,
		fmt.Sprintf("Created product %s (%s)", product.Name, product.SKU), nil)

	return s.productRepo.GetByID(s.db, productID)
}

func (s *productService) GetProducts(onlyActive bool) ([]models.Product, error) {
	products, err := s.productRepo.GetAll(onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (s *productService) GetProductByID(productID int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(s.db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(productID int64, req UpdateProductRequest, actorID int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(s.db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		sku := strings.ToUpper(strings.TrimSpace(*req.SKU))
		if sku == "" {
			return nil, fmt.Errorf("%w: SKU cannot be empty", ErrValidation)
		}
		product.SKU = sku
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
		}
		product.UnitPrice = *req.UnitPrice
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, fmt.Errorf("%w: low stock threshold cannot be negative", ErrValidation)
		}
		product.LowStockThreshold = req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductSKUExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}

	s.activity.Record(&actorID, models.ActivityActionUpdate, "product", &productID,
		fmt.Sprintf("Updated product %s (%s)", product.Name, product.SKU), nil)

	return s.productRepo.GetByID(s.db, productID)
}

func (s *productService) DeleteProduct(productID, actorID int64) error {
	product, err := s.productRepo.GetByID(s.db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	references, err := s.productRepo.CountStockReferences(s.db, productID)
	if err != nil {
		return fmt.Errorf("failed to count stock references for product %d: %w", productID, err)
	}
	if references > 0 {
		return fmt.Errorf("%w: %d warehouse ledger(s) hold stock", ErrProductReferenced, references)
	}

	if err := s.productRepo.Delete(s.db, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		// Historical adjustment or transfer lines keep referencing the product.
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: product appears in adjustment or transfer history", ErrProductReferenced)
		}
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}

	s.activity.Record(&actorID, models.ActivityActionDelete, "product", &productID,
		fmt.Sprintf("Deleted product %s (%s)", product.Name, product.SKU), nil)
	return nil
}
