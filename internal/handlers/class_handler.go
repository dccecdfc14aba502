package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
)

type ClassHandler struct {
	BaseHandler
	service services.ClassService
}

func NewClassHandler(service services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateClass creates a class record
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Success 201 {object} models.Class
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	h.LogRequest(c, "Creating class")

	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// GetClass returns one class
// @Summary Get a class
// @Tags classes
// @Produce json
// @Success 200 {object} models.Class
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /classes/{id} [get]
func (h *ClassHandler) GetClass(c *gin.Context) {
	h.LogRequest(c, "Getting class")

	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// ListClasses returns all classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Success 200 {array} models.Class
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	h.LogRequest(c, "Listing classes")

	classes, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

// UpdateClass edits a class record
// @Summary Update a class
// @Tags classes
// @Accept json
// @Produce json
// @Success 200 {object} models.Class
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /classes/{id} [put]
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	h.LogRequest(c, "Updating class")

	var req services.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	class, err := h.service.UpdateClass(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// DeleteClass removes a class record
// @Summary Delete a class
// @Tags classes
// @Success 204
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /classes/{id} [delete]
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	h.LogRequest(c, "Deleting class")

	if err := h.service.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
