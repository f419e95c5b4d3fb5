package handlers

import (
	"net/http"

	"storefront_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the audit trail of workflow transitions.
type ActivityHandler struct {
	activityService services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(as services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: as}
}

// GetActivityLog lists recent audit entries, newest first. Filterable by
// ?entity= (warehouse, product, inventory_adjustment, stock_transfer).
func (h *ActivityHandler) GetActivityLog(c *gin.Context) {
	entity := queryStrPtr(c, "entity")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	entries, totalCount, err := h.activityService.GetRecent(entity, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetActivityLog")
		return
	}
	c.JSON(http.StatusOK, paginatedResponse{Data: entries, Page: page, PageSize: pageSize, TotalCount: totalCount})
}
