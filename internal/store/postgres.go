package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one stored document: its full path ("users/<id>") plus the
// JSON body. The collection column is redundant with the path prefix and
// exists for indexed listing.
type Document struct {
	Path       string         `gorm:"primaryKey;size:255"`
	Collection string         `gorm:"index;size:64;not null"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (Document) TableName() string {
	return "documents"
}

// PostgresStore keeps each document as one jsonb row. Field-level operations
// read-modify-write the owning row under a SELECT FOR UPDATE lock.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ReadSubtree(ctx context.Context, path string) (any, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if len(segs) == 1 {
		var rows []Document
		if err := s.db.WithContext(ctx).Where("collection = ?", segs[0]).Find(&rows).Error; err != nil {
			return nil, unavailable("read", path, err)
		}
		out := map[string]any{}
		for _, row := range rows {
			var doc map[string]any
			if err := json.Unmarshal(row.Data, &doc); err != nil {
				return nil, fmt.Errorf("read %q: decode %q: %w", path, row.Path, err)
			}
			out[strings.TrimPrefix(row.Path, segs[0]+"/")] = doc
		}
		return out, nil
	}

	var row Document
	err = s.db.WithContext(ctx).First(&row, "path = ?", docPath(segs)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("read", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(row.Data, &doc); err != nil {
		return nil, fmt.Errorf("read %q: decode document: %w", path, err)
	}
	if len(segs) == 2 {
		return doc, nil
	}
	return fieldAt(doc, segs[2:]), nil
}

func (s *PostgresStore) WriteDocument(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	if len(segs) == 2 {
		buf, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("write %q: encode: %w", path, err)
		}
		row := Document{Path: docPath(segs), Collection: segs[0], Data: buf}
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).Create(&row).Error
		if err != nil {
			return unavailable("write", path, err)
		}
		return nil
	}
	return s.patchDocument(ctx, segs[0], docPath(segs), func(doc map[string]any) {
		setFieldAt(doc, segs[2:], value)
	})
}

func (s *PostgresStore) PatchFields(ctx context.Context, path string, fields map[string]any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) != 2 {
		return fmt.Errorf("%w: patch needs a document path, got %q", ErrInvalidPath, path)
	}
	return s.patchDocument(ctx, segs[0], docPath(segs), func(doc map[string]any) {
		for k, v := range fields {
			doc[k] = v
		}
	})
}

func (s *PostgresStore) patchDocument(ctx context.Context, collection, path string, mutate func(map[string]any)) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "path = ?", path).Error
		doc := map[string]any{}
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// patching an absent document creates it
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(row.Data, &doc); err != nil {
				return fmt.Errorf("decode document: %w", err)
			}
		}
		mutate(doc)
		buf, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		row = Document{Path: path, Collection: collection, Data: buf}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).Create(&row).Error
	})
	if err != nil {
		return unavailable("patch", path, err)
	}
	return nil
}

func (s *PostgresStore) DeleteSubtree(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	switch len(segs) {
	case 1:
		if err := s.db.WithContext(ctx).Where("collection = ?", segs[0]).Delete(&Document{}).Error; err != nil {
			return unavailable("delete", path, err)
		}
		return nil
	case 2:
		if err := s.db.WithContext(ctx).Delete(&Document{}, "path = ?", docPath(segs)).Error; err != nil {
			return unavailable("delete", path, err)
		}
		return nil
	default:
		return s.patchDocument(ctx, segs[0], docPath(segs), func(doc map[string]any) {
			deleteFieldAt(doc, segs[2:])
		})
	}
}

func (s *PostgresStore) AppendChild(ctx context.Context, collectionPath string, value any) (string, error) {
	segs, err := splitPath(collectionPath)
	if err != nil {
		return "", err
	}
	if len(segs) != 1 {
		return "", fmt.Errorf("%w: append needs a collection path, got %q", ErrInvalidPath, collectionPath)
	}
	id := PushKey()
	if err := s.WriteDocument(ctx, collectionPath+"/"+id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return unavailable("ping", "", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
