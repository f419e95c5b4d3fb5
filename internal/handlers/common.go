package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"storefront_backend/internal/services"
	"storefront_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// pathID parses the named path parameter as an int64 id. On failure it writes
// a 400 response and returns false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest,
			"Invalid "+name+" parameter.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// actorID returns the authenticated user's id from the request context. The
// auth middleware guarantees it is set on protected routes.
func actorID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized,
			"User not authenticated.", "Missing user ID in context"))
		return 0, false
	}
	userID, ok := raw.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized,
			"User ID format incorrect.", "Invalid user ID format in context"))
		return 0, false
	}
	return userID, true
}

// queryInt parses an integer query parameter, falling back when absent or invalid.
func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}

// queryInt64Ptr parses an optional int64 query parameter, returning nil when absent.
func queryInt64Ptr(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := utils.StrToInt64(raw)
	if err != nil {
		return nil
	}
	return &value
}

// queryStrPtr returns an optional string query parameter, nil when absent.
func queryStrPtr(c *gin.Context, name string) *string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	return &raw
}

// respondServiceError translates the inventory service sentinels into HTTP
// responses: not-found 404, validation and state errors 400, duplicates 409,
// everything else 500.
func respondServiceError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)
	switch {
	case errors.Is(err, services.ErrWarehouseNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrAdjustmentNotFound),
		errors.Is(err, services.ErrTransferNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrSameWarehouse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
	case errors.Is(err, services.ErrWarehouseCodeExists),
		errors.Is(err, services.ErrProductSKUExists),
		errors.Is(err, services.ErrWarehouseNotEmpty),
		errors.Is(err, services.ErrProductReferenced),
		errors.Is(err, services.ErrUsernameExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError,
			"An internal error occurred.", "Internal error"))
	}
}

// paginatedResponse is the envelope for list endpoints that support paging.
type paginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int         `json:"total_count"`
}
