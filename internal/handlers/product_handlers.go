package handlers

import (
	"net/http"

	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes the catalog entries the inventory ledgers refer to.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// CreateProduct handles creation of a new catalog product.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lists catalog products. ?active=true limits to active ones.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	products, err := h.productService.GetProducts(onlyActive)
	if err != nil {
		respondServiceError(c, err, "GetProducts")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProductByID fetches a single product.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProductByID(productID)
	if err != nil {
		respondServiceError(c, err, "GetProductByID")
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct updates catalog fields of a product.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(productID, req, userID)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product. Refused with 409 while any warehouse
// still holds stock of it.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(productID, userID); err != nil {
		respondServiceError(c, err, "DeleteProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
