package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/store"
)

const usersCollection = "users"

type UserKV struct {
	adapter store.Adapter
	logger  *slog.Logger
}

func NewUserKV(adapter store.Adapter, logger *slog.Logger) repositories.UserRepository {
	return &UserKV{adapter: adapter, logger: logger}
}

func userPath(id string) string {
	return usersCollection + "/" + id
}

// readUserDoc fetches the raw document, mapping absence to ErrNotFound.
func (r *UserKV) readUserDoc(ctx context.Context, id string) (any, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is empty: %w", repositories.ErrNotFound)
	}
	raw, err := r.adapter.ReadSubtree(ctx, userPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return raw, nil
}

func (r *UserKV) GetParent(ctx context.Context, id string) (*models.Parent, error) {
	raw, err := r.readUserDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	if role := models.RoleOf(raw); role != models.RoleParent {
		return nil, fmt.Errorf("user %s has role %q, not Parent: %w", id, role, repositories.ErrNotFound)
	}
	parent, err := models.DecodeParent(id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode parent %s: %w", id, err)
	}
	return parent, nil
}

func (r *UserKV) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	raw, err := r.readUserDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	if role := models.RoleOf(raw); role != models.RoleStudent {
		return nil, fmt.Errorf("user %s has role %q, not Student: %w", id, role, repositories.ErrNotFound)
	}
	student, err := models.DecodeStudent(id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode student %s: %w", id, err)
	}
	return student, nil
}

func (r *UserKV) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	raw, err := r.readUserDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	if role := models.RoleOf(raw); role != models.RoleTeacher {
		return nil, fmt.Errorf("user %s has role %q, not Teacher: %w", id, role, repositories.ErrNotFound)
	}
	teacher, err := models.DecodeTeacher(id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode teacher %s: %w", id, err)
	}
	return teacher, nil
}

// listUsers reads the whole collection once and hands each document with the
// requested role to decode. Documents that fail to decode are logged and
// skipped so one corrupt record does not break a listing.
func (r *UserKV) listUsers(ctx context.Context, role models.UserRole, decode func(id string, raw any) error) error {
	raw, err := r.adapter.ReadSubtree(ctx, usersCollection)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	coll, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	// iterate in id order so listings are deterministic; push keys make
	// that creation order
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc := coll[id]
		if models.RoleOf(doc) != role {
			continue
		}
		if err := decode(id, doc); err != nil {
			r.logger.Warn("skipping malformed user document", "user_id", id, "role", role, "error", err)
		}
	}
	return nil
}

func (r *UserKV) ListStudents(ctx context.Context) ([]*models.Student, error) {
	var out []*models.Student
	err := r.listUsers(ctx, models.RoleStudent, func(id string, raw any) error {
		student, err := models.DecodeStudent(id, raw)
		if err != nil {
			return err
		}
		out = append(out, student)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserKV) ListTeachers(ctx context.Context) ([]*models.Teacher, error) {
	var out []*models.Teacher
	err := r.listUsers(ctx, models.RoleTeacher, func(id string, raw any) error {
		teacher, err := models.DecodeTeacher(id, raw)
		if err != nil {
			return err
		}
		out = append(out, teacher)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserKV) ListParents(ctx context.Context) ([]*models.Parent, error) {
	var out []*models.Parent
	err := r.listUsers(ctx, models.RoleParent, func(id string, raw any) error {
		parent, err := models.DecodeParent(id, raw)
		if err != nil {
			return err
		}
		out = append(out, parent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserKV) CreateParent(ctx context.Context, parent *models.Parent) (string, error) {
	id := r.NewUserID()
	parent.UID = id
	parent.Role = models.RoleParent
	parent.StudentCount = len(parent.StudentList)

	doc, err := models.ToDocument(parent)
	if err != nil {
		return "", fmt.Errorf("failed to encode parent: %w", err)
	}
	if err := r.adapter.WriteDocument(ctx, userPath(id), doc); err != nil {
		return "", fmt.Errorf("failed to create parent: %w", err)
	}
	return id, nil
}

func (r *UserKV) CreateStudent(ctx context.Context, id string, student *models.Student) error {
	student.UID = id
	student.Role = models.RoleStudent

	doc, err := models.ToDocument(student)
	if err != nil {
		return fmt.Errorf("failed to encode student: %w", err)
	}
	if err := r.adapter.WriteDocument(ctx, userPath(id), doc); err != nil {
		return fmt.Errorf("failed to create student %s: %w", id, err)
	}
	return nil
}

func (r *UserKV) PatchParent(ctx context.Context, id string, fields map[string]any) error {
	if err := r.existsWithRole(ctx, id, models.RoleParent); err != nil {
		return err
	}
	if err := r.adapter.PatchFields(ctx, userPath(id), fields); err != nil {
		return fmt.Errorf("failed to patch parent %s: %w", id, err)
	}
	return nil
}

func (r *UserKV) PatchStudent(ctx context.Context, id string, fields map[string]any) error {
	if err := r.existsWithRole(ctx, id, models.RoleStudent); err != nil {
		return err
	}
	if err := r.adapter.PatchFields(ctx, userPath(id), fields); err != nil {
		return fmt.Errorf("failed to patch student %s: %w", id, err)
	}
	return nil
}

func (r *UserKV) existsWithRole(ctx context.Context, id string, role models.UserRole) error {
	raw, err := r.readUserDoc(ctx, id)
	if err != nil {
		return err
	}
	if got := models.RoleOf(raw); got != role {
		return fmt.Errorf("user %s has role %q, not %s: %w", id, got, role, repositories.ErrNotFound)
	}
	return nil
}

func (r *UserKV) DeleteUser(ctx context.Context, id string) error {
	if _, err := r.readUserDoc(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := r.adapter.DeleteSubtree(ctx, userPath(id)); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func (r *UserKV) NewUserID() string {
	return store.PushKey()
}
