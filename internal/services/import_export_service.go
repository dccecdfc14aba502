package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

const rosterSheet = "Students"

var rosterHeaders = []string{"First Name", "Last Name", "Birthday", "Grade", "Teacher ID"}

type importExportService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	search         SearchService
}

func NewImportExportService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, search SearchService) ImportExportService {
	return &importExportService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
		search:         search,
	}
}

// ImportRoster reads an XLSX student roster and creates a student document
// per data row. Rows matching an existing student (same name and birthday)
// are skipped, bad rows are reported with their row number.
func (s *importExportService) ImportRoster(ctx context.Context, r io.Reader) (*RosterImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer f.Close()

	sheet := rosterSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster sheet: %w", err)
	}
	if len(rows) == 0 {
		return &RosterImportResult{}, nil
	}

	existing, err := s.repo.User().ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing roster: %w", err)
	}
	known := map[string]bool{}
	for _, st := range existing {
		known[rosterKey(st.FirstName, st.LastName, st.Birthday)] = true
	}

	result := &RosterImportResult{}
	for i, row := range rows[1:] { // first row is the header
		rowNum := i + 2

		firstName := cell(row, 0)
		lastName := cell(row, 1)
		birthday := cell(row, 2)
		grade := cell(row, 3)
		teacherID := cell(row, 4)

		if firstName == "" || lastName == "" {
			result.Errors = append(result.Errors, RosterImportError{Row: rowNum, Reason: "first and last name are required"})
			continue
		}

		key := rosterKey(firstName, lastName, birthday)
		if known[key] {
			result.Skipped++
			continue
		}

		student := &models.Student{
			FirstName:       firstName,
			LastName:        lastName,
			Birthday:        birthday,
			Grade:           grade,
			LinkedTeacherID: teacherID,
			ParentsList:     []string{},
		}
		id := s.repo.User().NewUserID()
		if err := s.repo.User().CreateStudent(ctx, id, student); err != nil {
			s.logger.Error("failed to import roster row", "row", rowNum, "error", err)
			result.Errors = append(result.Errors, RosterImportError{Row: rowNum, Reason: "failed to store student"})
			continue
		}
		known[key] = true
		result.Created++
	}

	if result.Created > 0 && s.search != nil {
		if err := s.search.InvalidateRoster(ctx); err != nil {
			s.logger.Warn("failed to invalidate roster cache after import", "error", err)
		}
	}

	metrics.RosterImports.Inc()
	if s.eventPublisher != nil {
		event := events.NewEvent(events.EventRosterImport, map[string]any{
			"created": result.Created,
			"skipped": result.Skipped,
			"errors":  len(result.Errors),
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish roster import event", "error", err)
		}
	}

	s.logger.Info("Roster imported", "created", result.Created, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

// ExportRoster writes the current student roster as an XLSX workbook
func (s *importExportService) ExportRoster(ctx context.Context, w io.Writer) error {
	students, err := s.repo.User().ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		return fmt.Errorf("failed to create roster sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range rosterHeaders {
		cellName, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(rosterSheet, cellName, header); err != nil {
			return fmt.Errorf("failed to write roster header: %w", err)
		}
	}

	for i, st := range students {
		values := []string{st.FirstName, st.LastName, st.Birthday, st.EffectiveGrade(), st.LinkedTeacherID}
		for col, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(rosterSheet, cellName, v); err != nil {
				return fmt.Errorf("failed to write roster row %d: %w", i+2, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write roster workbook: %w", err)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rosterKey(firstName, lastName, birthday string) string {
	return strings.ToLower(firstName) + "|" + strings.ToLower(lastName) + "|" + birthday
}
