package handlers

import (
	"net/http"

	"storefront_backend/internal/models"
	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransferHandler exposes the two-phase stock transfer lifecycle.
type TransferHandler struct {
	transferService services.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ts services.TransferService) *TransferHandler {
	return &TransferHandler{transferService: ts}
}

// CreateTransfer opens a pending transfer between two warehouses.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req services.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.RequestTransfer(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateTransfer")
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

// GetTransfers lists transfers, filterable by ?warehouse_id= (matches either
// end) and ?status=.
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	warehouseID := queryInt64Ptr(c, "warehouse_id")
	status := queryStrPtr(c, "status")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	transfers, totalCount, err := h.transferService.GetTransfers(warehouseID, status, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetTransfers")
		return
	}
	c.JSON(http.StatusOK, paginatedResponse{Data: transfers, Page: page, PageSize: pageSize, TotalCount: totalCount})
}

// GetTransferByID fetches one transfer with its items.
func (h *TransferHandler) GetTransferByID(c *gin.Context) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.transferService.GetTransferByID(transferID)
	if err != nil {
		respondServiceError(c, err, "GetTransferByID")
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// DispatchTransfer debits the source warehouse and marks the transfer in transit.
func (h *TransferHandler) DispatchTransfer(c *gin.Context) {
	h.transition(c, "DispatchTransfer", h.transferService.DispatchTransfer)
}

// CompleteTransfer credits the destination warehouse and closes the transfer.
func (h *TransferHandler) CompleteTransfer(c *gin.Context) {
	h.transition(c, "CompleteTransfer", h.transferService.CompleteTransfer)
}

// CancelTransfer aborts a pending or in-transit transfer, returning any
// debited stock to the source.
func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	h.transition(c, "CancelTransfer", h.transferService.CancelTransfer)
}

func (h *TransferHandler) transition(c *gin.Context, logContext string,
	fn func(transferID, actorID int64) (*models.StockTransfer, error),
) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	transfer, err := fn(transferID, userID)
	if err != nil {
		respondServiceError(c, err, logContext)
		return
	}
	c.JSON(http.StatusOK, transfer)
}
