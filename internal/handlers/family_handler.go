package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
)

// FamilyHandler serves the authenticated parent's own family: the linked
// children and the link operations.
type FamilyHandler struct {
	BaseHandler
	linkService   services.LinkService
	searchService services.SearchService
}

func NewFamilyHandler(linkService services.LinkService, searchService services.SearchService, logger utils.Logger) *FamilyHandler {
	return &FamilyHandler{
		BaseHandler:   NewBaseHandler(logger),
		linkService:   linkService,
		searchService: searchService,
	}
}

func (h *FamilyHandler) parentID(c *gin.Context) (string, bool) {
	id, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return "", false
	}
	return id, true
}

// GetChildren returns the acting parent's linked students
// @Summary List my children
// @Tags family
// @Produce json
// @Success 200 {array} services.ChildView
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me/children [get]
func (h *FamilyHandler) GetChildren(c *gin.Context) {
	h.LogRequest(c, "Getting children")

	parentID, ok := h.parentID(c)
	if !ok {
		return
	}

	children, err := h.linkService.GetChildren(c.Request.Context(), parentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, children)
}

type linkRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

// LinkChild links a student to the acting parent
// @Summary Link a student to me
// @Tags family
// @Accept json
// @Produce json
// @Success 200 {object} services.LinkResult
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /me/children [post]
func (h *FamilyHandler) LinkChild(c *gin.Context) {
	h.LogRequest(c, "Linking child")

	parentID, ok := h.parentID(c)
	if !ok {
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	result, err := h.linkService.Link(c.Request.Context(), parentID, req.StudentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyLinked {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// UnlinkChild removes the link between the acting parent and a student
// @Summary Unlink a student from me
// @Tags family
// @Produce json
// @Success 200 {object} services.LinkResult
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /me/children/{id} [delete]
func (h *FamilyHandler) UnlinkChild(c *gin.Context) {
	h.LogRequest(c, "Unlinking child")

	parentID, ok := h.parentID(c)
	if !ok {
		return
	}

	result, err := h.linkService.Unlink(c.Request.Context(), parentID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateChild edits a linked student's core fields
// @Summary Update one of my children
// @Tags family
// @Accept json
// @Produce json
// @Success 200 {object} services.ChildView
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Not linked"
// @Router /me/children/{id} [put]
func (h *FamilyHandler) UpdateChild(c *gin.Context) {
	h.LogRequest(c, "Updating child")

	parentID, ok := h.parentID(c)
	if !ok {
		return
	}

	var req services.ChildUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	view, err := h.linkService.UpdateChild(c.Request.Context(), parentID, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SearchChild finds students matching exact criteria that are not yet
// linked to the acting parent.
// @Summary Find a linkable student
// @Tags family
// @Accept json
// @Produce json
// @Success 200 {array} services.StudentSummary
// @Failure 400 {object} ErrorResponse "Incomplete criteria"
// @Failure 409 {object} ErrorResponse "Already linked"
// @Router /me/children/search [post]
func (h *FamilyHandler) SearchChild(c *gin.Context) {
	h.LogRequest(c, "Searching linkable student")

	parentID, ok := h.parentID(c)
	if !ok {
		return
	}

	var req services.ChildSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	results, err := h.searchService.FindExactForParent(c.Request.Context(), parentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
