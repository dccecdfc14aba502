package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/store"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
)

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// BaseHandler carries shared handler behavior
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of request handling with request context
func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.LoggerFromContext(c, h.logger).Info(msg,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// handleServiceError maps domain errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrIncompleteCriteria):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "First name, last name and birthday are all required",
		})
	case errors.Is(err, services.ErrNoStudentsSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "At least one student must be selected",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyLinked):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Student is already linked to this parent",
		})
	case errors.Is(err, services.ErrNotLinked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Student is not linked to this parent",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Record not found",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Not allowed",
		})
	case errors.Is(err, store.ErrStoreUnavailable):
		metrics.StoreUnavailable.Inc()
		utils.LoggerFromContext(c, h.logger).Error("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage backend unavailable",
		})
	default:
		utils.LoggerFromContext(c, h.logger).Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
