package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/guardian-service/internal/models"
)

// ErrNotFound reports that a document does not exist, or exists with a role
// other than the one the caller asked for.
var ErrNotFound = errors.New("record not found")

// ===== USER DOMAIN =====

// UserRepository reads and writes the role-discriminated user documents.
// Every getter normalizes the stored shape (legacy keyed-map id lists become
// ordered slices, absent lists become empty slices) before returning.
type UserRepository interface {
	// GetParent returns the parent with the given id. A document whose role
	// is not Parent yields ErrNotFound.
	GetParent(ctx context.Context, id string) (*models.Parent, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)

	// ListStudents returns every user document with role Student. Documents
	// that fail to decode are skipped, not fatal.
	ListStudents(ctx context.Context) ([]*models.Student, error)
	ListTeachers(ctx context.Context) ([]*models.Teacher, error)
	ListParents(ctx context.Context) ([]*models.Parent, error)

	// CreateParent persists the parent under a freshly generated id and
	// returns that id. The stored document carries the id in its uid field.
	CreateParent(ctx context.Context, parent *models.Parent) (string, error)

	// CreateStudent persists the student under the given id.
	CreateStudent(ctx context.Context, id string, student *models.Student) error

	// PatchParent merges the given fields into the parent document, leaving
	// sibling fields untouched.
	PatchParent(ctx context.Context, id string, fields map[string]any) error
	PatchStudent(ctx context.Context, id string, fields map[string]any) error

	DeleteUser(ctx context.Context, id string) error

	// NewUserID generates a store-compatible user id without writing.
	NewUserID() string
}

// ===== CLASS DOMAIN =====

type ClassRepository interface {
	GetClass(ctx context.Context, id string) (*models.Class, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
	CreateClass(ctx context.Context, class *models.Class) error
	UpdateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, id string) error
}
