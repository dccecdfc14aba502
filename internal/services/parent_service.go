package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

type parentService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewParentService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ParentService {
	return &parentService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// CreateParent runs the batch association workflow: validate, write the
// parent document once with the full deduplicated selection, then patch each
// student's parentsList. The parent list is authoritative even when a
// back-reference cannot be written; those students are reported in the
// result instead of aborting the creation.
func (s *parentService) CreateParent(ctx context.Context, req *CreateParentRequest) (*CreateParentResult, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}
	if len(req.StudentIDs) == 0 {
		return nil, ErrNoStudentsSelected
	}

	studentIDs := dedupeIDs(req.StudentIDs)

	parent := &models.Parent{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Telephone:     req.Telephone,
		Password:      req.Password,
		Address:       models.Address{Street: req.Address.Street, City: req.Address.City, PostalCode: req.Address.PostalCode},
		SchoolName:    req.SchoolName,
		Title:         req.Title,
		NationalID:    req.NationalID,
		AcademicRole:  models.AcademicRole(req.AcademicRole),
		StudentList:   studentIDs,
		DataCompleted: true,
		Frozen:        true,
		CreatedAt:     time.Now().UnixMilli(),
	}

	parentID, err := s.repo.User().CreateParent(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}
	metrics.ParentsCreated.Inc()

	// Back-references are written one student at a time. The parent document
	// already carries the full selection, so any failure here leaves a
	// half-link the link service repairs on the next pass.
	var failures []StudentLinkFailure
	var linked []string
	for _, id := range studentIDs {
		student, err := s.repo.User().GetStudent(ctx, id)
		if err != nil {
			reason := "student lookup failed"
			if errors.Is(err, repositories.ErrNotFound) {
				reason = "student not found"
			}
			s.logger.Warn("selected student could not be resolved",
				"parent_id", parentID, "student_id", id, "error", err)
			failures = append(failures, StudentLinkFailure{StudentID: id, Reason: reason})
			metrics.LinkOperations.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.publish(ctx, events.EventLinkFailed, map[string]any{
				"parent_id":  parentID,
				"student_id": id,
			})
			continue
		}
		if containsID(student.ParentsList, parentID) {
			linked = append(linked, id)
			continue
		}
		err = s.repo.User().PatchStudent(ctx, id, map[string]any{
			"parentsList": appendID(student.ParentsList, parentID),
		})
		if err != nil {
			s.logger.Error("failed to write student back-reference",
				"parent_id", parentID, "student_id", id, "error", err)
			failures = append(failures, StudentLinkFailure{StudentID: id, Reason: "failed to update student record"})
			metrics.LinkOperations.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.publish(ctx, events.EventLinkFailed, map[string]any{
				"parent_id":  parentID,
				"student_id": id,
			})
			continue
		}
		linked = append(linked, id)
		metrics.LinkOperations.WithLabelValues(metrics.OutcomeLinked).Inc()
	}

	s.publish(ctx, events.EventParentCreated, map[string]any{
		"parent_id":     parentID,
		"linked_count":  len(linked),
		"failure_count": len(failures),
	})

	s.logger.Info("Parent created", "parent_id", parentID, "linked", len(linked), "failures", len(failures))
	return &CreateParentResult{
		ParentID: parentID,
		Linked:   linked,
		Failures: failures,
	}, nil
}

func (s *parentService) GetParent(ctx context.Context, id string) (*models.Parent, error) {
	parent, err := s.repo.User().GetParent(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	// the password never leaves the service layer
	parent.Password = ""
	return parent, nil
}

func (s *parentService) ListParents(ctx context.Context) ([]*models.Parent, error) {
	parents, err := s.repo.User().ListParents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list parents: %w", err)
	}
	for _, p := range parents {
		p.Password = ""
	}
	return parents, nil
}

func dedupeIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *parentService) publish(ctx context.Context, eventType string, data map[string]any) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
