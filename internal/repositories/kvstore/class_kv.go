package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/store"
)

const classesCollection = "classes"

type ClassKV struct {
	adapter store.Adapter
	logger  *slog.Logger
}

func NewClassKV(adapter store.Adapter, logger *slog.Logger) repositories.ClassRepository {
	return &ClassKV{adapter: adapter, logger: logger}
}

func classPath(id string) string {
	return classesCollection + "/" + id
}

func (r *ClassKV) GetClass(ctx context.Context, id string) (*models.Class, error) {
	if id == "" {
		return nil, fmt.Errorf("class id is empty: %w", repositories.ErrNotFound)
	}
	raw, err := r.adapter.ReadSubtree(ctx, classPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read class %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("class %s: %w", id, repositories.ErrNotFound)
	}
	class, err := models.DecodeClass(id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode class %s: %w", id, err)
	}
	return class, nil
}

func (r *ClassKV) ListClasses(ctx context.Context) ([]*models.Class, error) {
	raw, err := r.adapter.ReadSubtree(ctx, classesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	coll, ok := raw.(map[string]any)
	if !ok {
		return []*models.Class{}, nil
	}
	out := make([]*models.Class, 0, len(coll))
	for id, doc := range coll {
		class, err := models.DecodeClass(id, doc)
		if err != nil {
			r.logger.Warn("skipping malformed class document", "class_id", id, "error", err)
			continue
		}
		out = append(out, class)
	}
	return out, nil
}

func (r *ClassKV) CreateClass(ctx context.Context, class *models.Class) error {
	doc, err := models.ToDocument(class)
	if err != nil {
		return fmt.Errorf("failed to encode class: %w", err)
	}
	if err := r.adapter.WriteDocument(ctx, classPath(class.ID), doc); err != nil {
		return fmt.Errorf("failed to create class %s: %w", class.ID, err)
	}
	return nil
}

func (r *ClassKV) UpdateClass(ctx context.Context, class *models.Class) error {
	if _, err := r.GetClass(ctx, class.ID); err != nil {
		return err
	}
	doc, err := models.ToDocument(class)
	if err != nil {
		return fmt.Errorf("failed to encode class: %w", err)
	}
	if err := r.adapter.WriteDocument(ctx, classPath(class.ID), doc); err != nil {
		return fmt.Errorf("failed to update class %s: %w", class.ID, err)
	}
	return nil
}

func (r *ClassKV) DeleteClass(ctx context.Context, id string) error {
	if err := r.adapter.DeleteSubtree(ctx, classPath(id)); err != nil {
		return fmt.Errorf("failed to delete class %s: %w", id, err)
	}
	return nil
}
