package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
)

// StudentHandler serves roster search, directory and import/export
type StudentHandler struct {
	BaseHandler
	searchService services.SearchService
	importExport  services.ImportExportService
}

func NewStudentHandler(searchService services.SearchService, importExport services.ImportExportService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:   NewBaseHandler(logger),
		searchService: searchService,
		importExport:  importExport,
	}
}

// SearchStudents matches the query against student full names
// @Summary Search students by name substring
// @Tags students
// @Produce json
// @Param q query string false "Name fragment; empty returns nothing"
// @Success 200 {array} services.StudentSummary
// @Router /students/search [get]
func (h *StudentHandler) SearchStudents(c *gin.Context) {
	h.LogRequest(c, "Searching students")

	results, err := h.searchService.SearchBySubstring(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// FindStudent runs the exact-criteria lookup used during registration
// @Summary Find students by exact criteria
// @Tags students
// @Accept json
// @Produce json
// @Success 200 {array} services.StudentSummary
// @Failure 400 {object} ErrorResponse "Incomplete criteria"
// @Router /students/find [post]
func (h *StudentHandler) FindStudent(c *gin.Context) {
	h.LogRequest(c, "Finding student by exact criteria")

	var req services.ChildSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	results, err := h.searchService.FindExact(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ListTeachers returns the teacher directory
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Success 200 {array} services.TeacherSummary
// @Router /teachers [get]
func (h *StudentHandler) ListTeachers(c *gin.Context) {
	h.LogRequest(c, "Listing teachers")

	teachers, err := h.searchService.ListTeachers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// ImportRoster ingests an XLSX student roster
// @Summary Import a student roster
// @Tags students
// @Accept mpfd
// @Produce json
// @Success 200 {object} services.RosterImportResult
// @Failure 400 {object} ErrorResponse "Bad upload"
// @Router /students/import [post]
func (h *StudentHandler) ImportRoster(c *gin.Context) {
	h.LogRequest(c, "Importing roster")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing roster file",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read roster file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.importExport.ImportRoster(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportRoster streams the student roster as an XLSX workbook
// @Summary Export the student roster
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /students/export [get]
func (h *StudentHandler) ExportRoster(c *gin.Context) {
	h.LogRequest(c, "Exporting roster")

	filename := fmt.Sprintf("roster-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.importExport.ExportRoster(c.Request.Context(), c.Writer); err != nil {
		// headers may already be written; log instead of switching payloads
		utils.LoggerFromContext(c, h.logger).Error("roster export failed", "error", err)
		c.Status(http.StatusInternalServerError)
	}
}
