package handlers

import (
	"net/http"

	"storefront_backend/internal/models"
	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AlertHandler exposes derived low-stock alerts and fleet statistics.
type AlertHandler struct {
	alertService services.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(as services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: as}
}

// GetAlerts lists current low-stock and out-of-stock alerts, recomputed from
// the live ledgers. Filterable by ?warehouse_id= and ?level=.
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	warehouseID := queryInt64Ptr(c, "warehouse_id")
	level := queryStrPtr(c, "level")
	if level != nil && *level != models.AlertLevelLowStock && *level != models.AlertLevelOutOfStock {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest,
			"Invalid alert level. Use low_stock or out_of_stock.", *level))
		return
	}

	alerts, err := h.alertService.GetAlerts(warehouseID, level)
	if err != nil {
		respondServiceError(c, err, "GetAlerts")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetStats returns the fleet-wide inventory summary.
func (h *AlertHandler) GetStats(c *gin.Context) {
	stats, err := h.alertService.GetStats()
	if err != nil {
		respondServiceError(c, err, "GetStats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
