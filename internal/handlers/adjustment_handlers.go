package handlers

import (
	"net/http"

	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdjustmentHandler exposes the inventory adjustment lifecycle.
type AdjustmentHandler struct {
	adjustmentService services.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler.
func NewAdjustmentHandler(as services.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: as}
}

// CreateAdjustment files a pending adjustment proposal. The ledger is not
// touched until a reviewer approves it.
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	var req services.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.ProposeAdjustment(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateAdjustment")
		return
	}
	c.JSON(http.StatusCreated, adjustment)
}

// GetAdjustments lists adjustments, filterable by ?warehouse_id= and ?status=.
func (h *AdjustmentHandler) GetAdjustments(c *gin.Context) {
	warehouseID := queryInt64Ptr(c, "warehouse_id")
	status := queryStrPtr(c, "status")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	adjustments, totalCount, err := h.adjustmentService.GetAdjustments(warehouseID, status, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetAdjustments")
		return
	}
	c.JSON(http.StatusOK, paginatedResponse{Data: adjustments, Page: page, PageSize: pageSize, TotalCount: totalCount})
}

// GetAdjustmentByID fetches one adjustment with its lines.
func (h *AdjustmentHandler) GetAdjustmentByID(c *gin.Context) {
	adjustmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	adjustment, err := h.adjustmentService.GetAdjustmentByID(adjustmentID)
	if err != nil {
		respondServiceError(c, err, "GetAdjustmentByID")
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// ApproveAdjustment applies a pending adjustment to the warehouse ledger.
func (h *AdjustmentHandler) ApproveAdjustment(c *gin.Context) {
	adjustmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.ApproveAdjustment(adjustmentID, userID)
	if err != nil {
		respondServiceError(c, err, "ApproveAdjustment")
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// RejectAdjustment closes a pending adjustment without touching the ledger.
func (h *AdjustmentHandler) RejectAdjustment(c *gin.Context) {
	adjustmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.RejectAdjustment(adjustmentID, userID)
	if err != nil {
		respondServiceError(c, err, "RejectAdjustment")
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// DeleteAdjustment removes a pending or rejected adjustment record.
func (h *AdjustmentHandler) DeleteAdjustment(c *gin.Context) {
	adjustmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.adjustmentService.DeleteAdjustment(adjustmentID, userID); err != nil {
		respondServiceError(c, err, "DeleteAdjustment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Adjustment deleted successfully"})
}
