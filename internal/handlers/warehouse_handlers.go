package handlers

import (
	"net/http"

	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WarehouseHandler exposes the warehouse registry and its stock ledgers.
type WarehouseHandler struct {
	warehouseService services.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler.
func NewWarehouseHandler(ws services.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: ws}
}

// CreateWarehouse handles registration of a new warehouse.
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req services.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.CreateWarehouse(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateWarehouse")
		return
	}
	c.JSON(http.StatusCreated, warehouse)
}

// GetWarehouses lists warehouses with their embedded stock ledgers.
// ?active=true limits the list to active warehouses.
func (h *WarehouseHandler) GetWarehouses(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	warehouses, err := h.warehouseService.GetWarehouses(onlyActive)
	if err != nil {
		respondServiceError(c, err, "GetWarehouses")
		return
	}
	c.JSON(http.StatusOK, warehouses)
}

// GetWarehouseByID fetches one warehouse with its full ledger.
func (h *WarehouseHandler) GetWarehouseByID(c *gin.Context) {
	warehouseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	warehouse, err := h.warehouseService.GetWarehouseByID(warehouseID)
	if err != nil {
		respondServiceError(c, err, "GetWarehouseByID")
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

// UpdateWarehouse updates warehouse identity fields.
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	warehouseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.UpdateWarehouse(warehouseID, req, userID)
	if err != nil {
		respondServiceError(c, err, "UpdateWarehouse")
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

// DeleteWarehouse removes a warehouse. Refused with 409 while any ledger
// entry still holds positive quantity.
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	warehouseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.warehouseService.DeleteWarehouse(warehouseID, userID); err != nil {
		respondServiceError(c, err, "DeleteWarehouse")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warehouse deleted successfully"})
}

// MutateStock applies one add/subtract/set operation to a ledger entry and
// returns the updated warehouse.
func (h *WarehouseHandler) MutateStock(c *gin.Context) {
	warehouseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.StockMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.MutateStock(warehouseID, req, userID)
	if err != nil {
		respondServiceError(c, err, "MutateStock")
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

// GetAvailableStock returns quantity minus reserved for one product in one
// warehouse. A warehouse with no ledger entry for the product reports 0.
func (h *WarehouseHandler) GetAvailableStock(c *gin.Context) {
	warehouseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	available, err := h.warehouseService.AvailableStock(warehouseID, productID)
	if err != nil {
		respondServiceError(c, err, "GetAvailableStock")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"warehouse_id": warehouseID,
		"product_id":   productID,
		"available":    available,
	})
}
