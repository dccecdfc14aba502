package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

type ParentHandler struct {
	BaseHandler
	service   services.ParentService
	validator *validator.Validator
}

func NewParentHandler(service services.ParentService, validator *validator.Validator, logger utils.Logger) *ParentHandler {
	return &ParentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// CreateParent registers a parent account and links the selected students
// @Summary Register a parent
// @Tags parents
// @Accept json
// @Produce json
// @Success 201 {object} services.CreateParentResult
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /parents [post]
func (h *ParentHandler) CreateParent(c *gin.Context) {
	h.LogRequest(c, "Creating parent")

	var req services.CreateParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	result, err := h.service.CreateParent(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// partial linking still creates the parent; the status code says so
	status := http.StatusCreated
	if len(result.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// GetParent returns one parent record
// @Summary Get a parent
// @Tags parents
// @Produce json
// @Success 200 {object} models.Parent
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /parents/{id} [get]
func (h *ParentHandler) GetParent(c *gin.Context) {
	h.LogRequest(c, "Getting parent")

	parent, err := h.service.GetParent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, parent)
}

// ListParents returns all registered parents
// @Summary List parents
// @Tags parents
// @Produce json
// @Success 200 {array} models.Parent
// @Router /parents [get]
func (h *ParentHandler) ListParents(c *gin.Context) {
	h.LogRequest(c, "Listing parents")

	parents, err := h.service.ListParents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, parents)
}
