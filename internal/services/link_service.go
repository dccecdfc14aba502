package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

type linkService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewLinkService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) LinkService {
	return &linkService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// appendID returns a new slice; callers never mutate the list they read.
func appendID(list []string, id string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, id)
}

func removeID(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *linkService) loadPair(ctx context.Context, parentID, studentID string) (*models.Parent, *models.Student, error) {
	parent, err := s.repo.User().GetParent(ctx, parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrParentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load parent %s: %w", parentID, err)
	}
	student, err := s.repo.User().GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load student %s: %w", studentID, err)
	}
	return parent, student, nil
}

func (s *linkService) Link(ctx context.Context, parentID, studentID string) (*LinkResult, error) {
	s.logger.Info("Linking student to parent", "parent_id", parentID, "student_id", studentID)

	parent, student, err := s.loadPair(ctx, parentID, studentID)
	if err != nil {
		return nil, err
	}

	parentHas := containsID(parent.StudentList, studentID)
	studentHas := containsID(student.ParentsList, parentID)

	result := &LinkResult{ParentID: parentID, StudentID: studentID}

	if parentHas && studentHas {
		result.AlreadyLinked = true
		metrics.LinkOperations.WithLabelValues(metrics.OutcomeAlreadyLinked).Inc()
		return result, nil
	}

	if !parentHas {
		newList := appendID(parent.StudentList, studentID)
		err := s.repo.User().PatchParent(ctx, parentID, map[string]any{
			"studentList":  newList,
			"studentCount": len(newList),
		})
		if err != nil {
			metrics.LinkOperations.WithLabelValues(metrics.OutcomeFailed).Inc()
			return nil, fmt.Errorf("failed to update parent side of link: %w", err)
		}
	}

	if !studentHas {
		err := s.repo.User().PatchStudent(ctx, studentID, map[string]any{
			"parentsList": appendID(student.ParentsList, parentID),
		})
		if err != nil {
			metrics.LinkOperations.WithLabelValues(metrics.OutcomeFailed).Inc()
			// The parent side may already be written; the next Link or
			// GetChildren repair pass completes it.
			return nil, fmt.Errorf("failed to update student side of link: %w", err)
		}
	}

	// exactly one side held the reference before the call
	result.Repaired = parentHas != studentHas

	eventType := events.EventLinkCreated
	outcome := metrics.OutcomeLinked
	if result.Repaired {
		eventType = events.EventLinkRepaired
		outcome = metrics.OutcomeRepaired
	}
	metrics.LinkOperations.WithLabelValues(outcome).Inc()
	s.publish(ctx, eventType, map[string]any{
		"parent_id":  parentID,
		"student_id": studentID,
	})

	s.logger.Info("Link established", "parent_id", parentID, "student_id", studentID, "repaired", result.Repaired)
	return result, nil
}

func (s *linkService) Unlink(ctx context.Context, parentID, studentID string) (*LinkResult, error) {
	s.logger.Info("Unlinking student from parent", "parent_id", parentID, "student_id", studentID)

	parent, student, err := s.loadPair(ctx, parentID, studentID)
	if err != nil {
		return nil, err
	}

	parentHas := containsID(parent.StudentList, studentID)
	studentHas := containsID(student.ParentsList, parentID)

	result := &LinkResult{ParentID: parentID, StudentID: studentID}

	if !parentHas && !studentHas {
		// already unlinked; idempotent success
		return result, nil
	}

	if parentHas {
		newList := removeID(parent.StudentList, studentID)
		err := s.repo.User().PatchParent(ctx, parentID, map[string]any{
			"studentList":  newList,
			"studentCount": len(newList),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update parent side of unlink: %w", err)
		}
	}

	if studentHas {
		err := s.repo.User().PatchStudent(ctx, studentID, map[string]any{
			"parentsList": removeID(student.ParentsList, parentID),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update student side of unlink: %w", err)
		}
	}

	metrics.LinkOperations.WithLabelValues(metrics.OutcomeUnlinked).Inc()
	s.publish(ctx, events.EventLinkRemoved, map[string]any{
		"parent_id":  parentID,
		"student_id": studentID,
	})
	return result, nil
}

func (s *linkService) GetChildren(ctx context.Context, parentID string) ([]ChildView, error) {
	parent, err := s.repo.User().GetParent(ctx, parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to load parent %s: %w", parentID, err)
	}

	// the overview is the first thing a parent loads after activation;
	// back-fill the uid on legacy records here. Decoding masks a missing
	// stored uid, so the patch is unconditional (and idempotent).
	if err := s.EnsureParentUID(ctx, parentID); err != nil {
		s.logger.Warn("failed to back-fill parent uid", "parent_id", parentID, "error", err)
	}

	// teacher lookups repeat across siblings; memoize per call
	teacherNames := map[string]string{}

	out := make([]ChildView, 0, len(parent.StudentList))
	for _, studentID := range parent.StudentList {
		student, err := s.repo.User().GetStudent(ctx, studentID)
		if err != nil {
			s.logger.Warn("skipping unresolvable child reference",
				"parent_id", parentID, "student_id", studentID, "error", err)
			continue
		}

		view := ChildView{
			UID:       student.UID,
			FirstName: student.FirstName,
			LastName:  student.LastName,
			Birthday:  student.Birthday,
			Grade:     student.EffectiveGrade(),
			TeacherID: student.LinkedTeacherID,
		}
		if student.LinkedTeacherID != "" {
			name, ok := teacherNames[student.LinkedTeacherID]
			if !ok {
				if teacher, err := s.repo.User().GetTeacher(ctx, student.LinkedTeacherID); err == nil {
					name = teacher.FullName()
				}
				teacherNames[student.LinkedTeacherID] = name
			}
			view.TeacherName = name
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *linkService) UpdateChild(ctx context.Context, parentID, studentID string, req *ChildUpdateRequest) (*ChildView, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	parent, student, err := s.loadPair(ctx, parentID, studentID)
	if err != nil {
		return nil, err
	}
	if !containsID(parent.StudentList, studentID) && !containsID(student.ParentsList, parentID) {
		return nil, ErrNotLinked
	}

	fields := map[string]any{}
	if req.FirstName != nil {
		fields["firstName"] = *req.FirstName
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		fields["lastName"] = *req.LastName
		student.LastName = *req.LastName
	}
	if req.Birthday != nil {
		fields["birthday"] = *req.Birthday
		student.Birthday = *req.Birthday
	}
	if req.Grade != nil {
		fields["schoolGrade"] = *req.Grade
		student.Grade = *req.Grade
	}

	if len(fields) > 0 {
		if err := s.repo.User().PatchStudent(ctx, studentID, fields); err != nil {
			return nil, fmt.Errorf("failed to update child %s: %w", studentID, err)
		}
	}

	view := &ChildView{
		UID:       student.UID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Birthday:  student.Birthday,
		Grade:     student.EffectiveGrade(),
		TeacherID: student.LinkedTeacherID,
	}
	return view, nil
}

// EnsureParentUID back-fills the uid field on legacy parent documents that
// were created without one. The patch is idempotent, so it always runs; the
// read up front only confirms the record exists with the Parent role.
func (s *linkService) EnsureParentUID(ctx context.Context, parentID string) error {
	if _, err := s.repo.User().GetParent(ctx, parentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParentNotFound
		}
		return err
	}
	return s.repo.User().PatchParent(ctx, parentID, map[string]any{"uid": parentID})
}

func (s *linkService) publish(ctx context.Context, eventType string, data map[string]any) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
