// Package store provides the hierarchical key-value document store adapter.
//
// Documents live at depth-2 paths ("users/{id}", "classes/{id}"); deeper
// paths address fields inside a document ("users/{id}/parentsList"). Reading
// a collection path returns a map of id to document. None of the operations
// are transactional across multiple paths; a single document write is
// all-or-nothing.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStoreUnavailable reports a backend/network failure. There is no
// partial-success signaling within a single call.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrInvalidPath reports a path the adapter cannot address.
var ErrInvalidPath = errors.New("invalid store path")

// Adapter is the thin abstraction over the document store. Implementations
// carry no business logic.
type Adapter interface {
	// ReadSubtree returns the value at path: a map of id to document for a
	// collection path, the decoded document for a document path, or the
	// field value for a deeper path. Absent paths return (nil, nil).
	ReadSubtree(ctx context.Context, path string) (any, error)

	// WriteDocument replaces the value at path. Writing a field path
	// rewrites only that field inside its document.
	WriteDocument(ctx context.Context, path string, value any) error

	// PatchFields merges the named fields into the document at path without
	// touching sibling fields. The merge is performed under an optimistic
	// concurrency guard, so two concurrent patches to the same document do
	// not clobber each other's fields.
	PatchFields(ctx context.Context, path string, fields map[string]any) error

	// DeleteSubtree removes the document, collection or field at path.
	// Deleting an absent path is a no-op.
	DeleteSubtree(ctx context.Context, path string) error

	// AppendChild stores value under collectionPath with a generated child
	// id and returns that id. Generated ids sort by creation time.
	AppendChild(ctx context.Context, collectionPath string, value any) (string, error)

	Ping(ctx context.Context) error
	Close() error
}

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segs := strings.Split(trimmed, "/")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

func docPath(segs []string) string {
	return segs[0] + "/" + segs[1]
}

// fieldAt walks the field segments below a document root. Missing
// intermediate values return nil.
func fieldAt(doc map[string]any, fields []string) any {
	var cur any = doc
	for _, f := range fields {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[f]
	}
	return cur
}

// setFieldAt sets the value at the field segments below the document root,
// creating intermediate objects as needed.
func setFieldAt(doc map[string]any, fields []string, value any) {
	cur := doc
	for _, f := range fields[:len(fields)-1] {
		next, ok := cur[f].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[f] = next
		}
		cur = next
	}
	cur[fields[len(fields)-1]] = value
}

func deleteFieldAt(doc map[string]any, fields []string) {
	cur := doc
	for _, f := range fields[:len(fields)-1] {
		next, ok := cur[f].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, fields[len(fields)-1])
}

func unavailable(op, path string, err error) error {
	return fmt.Errorf("%s %q: %w: %v", op, path, ErrStoreUnavailable, err)
}
