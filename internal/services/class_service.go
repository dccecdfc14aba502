package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func newClassID() string {
	return fmt.Sprintf("class_%d", time.Now().UnixMilli())
}

func (s *classService) CreateClass(ctx context.Context, req *CreateClassRequest) (*models.Class, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}
	if err := s.verifyMembers(ctx, req.Teacher, req.Students); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	class := &models.Class{
		ID:        newClassID(),
		Name:      req.Name,
		Level:     req.Level,
		Teacher:   req.Teacher,
		Students:  dedupeIDs(req.Students),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if class.Students == nil {
		class.Students = []string{}
	}

	if err := s.repo.Class().CreateClass(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("Class created", "class_id", class.ID, "name", class.Name)
	return class, nil
}

func (s *classService) GetClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.Class().GetClass(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *classService) ListClasses(ctx context.Context) ([]*models.Class, error) {
	return s.repo.Class().ListClasses(ctx)
}

func (s *classService) UpdateClass(ctx context.Context, id string, req *UpdateClassRequest) (*models.Class, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	class, err := s.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Level != nil {
		class.Level = *req.Level
	}
	if req.Teacher != nil {
		class.Teacher = req.Teacher
	}
	if req.Students != nil {
		class.Students = dedupeIDs(req.Students)
	}
	if err := s.verifyMembers(ctx, class.Teacher, class.Students); err != nil {
		return nil, err
	}
	class.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.Class().UpdateClass(ctx, class); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to update class %s: %w", id, err)
	}

	s.logger.Info("Class updated", "class_id", id)
	return class, nil
}

func (s *classService) DeleteClass(ctx context.Context, id string) error {
	if _, err := s.GetClass(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Class().DeleteClass(ctx, id); err != nil {
		return fmt.Errorf("failed to delete class %s: %w", id, err)
	}
	s.logger.Info("Class deleted", "class_id", id)
	return nil
}

// verifyMembers checks that the referenced teacher and students exist with
// the right roles before a class write.
func (s *classService) verifyMembers(ctx context.Context, teacherID *string, studentIDs []string) error {
	if teacherID != nil && *teacherID != "" {
		if _, err := s.repo.User().GetTeacher(ctx, *teacherID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTeacherNotFound
			}
			return err
		}
	}
	for _, id := range studentIDs {
		if _, err := s.repo.User().GetStudent(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("class member %s: %w", id, ErrStudentNotFound)
			}
			return err
		}
	}
	return nil
}
