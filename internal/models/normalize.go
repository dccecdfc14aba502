package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrMalformedDocument is returned when a stored document cannot be coerced
// into the canonical schema for its role.
var ErrMalformedDocument = errors.New("malformed document")

// NormalizeIDList coerces a persisted list field into the canonical ordered
// string slice. Legacy records hold three shapes: a proper array, a keyed map
// (artifact of partial field updates), or nothing at all. A map is flattened
// by taking its values in key order; keys that all parse as integers are
// ordered numerically, anything else lexicographically. The result is never
// nil and never contains duplicates or empty ids.
func NormalizeIDList(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case nil:
	case []string:
		for _, s := range list {
			out = appendUnique(out, s)
		}
	case []any:
		for _, e := range list {
			if s, ok := e.(string); ok {
				out = appendUnique(out, s)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(list))
		for k := range list {
			keys = append(keys, k)
		}
		sortListKeys(keys)
		for _, k := range keys {
			if s, ok := list[k].(string); ok {
				out = appendUnique(out, s)
			}
		}
	}
	return out
}

func appendUnique(list []string, id string) []string {
	if id == "" {
		return list
	}
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func sortListKeys(keys []string) {
	numeric := true
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if numeric {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		}
		return keys[i] < keys[j]
	})
}

// RoleOf reads the role discriminant of a raw users/{id} document. Returns
// an empty role for non-map or role-less documents.
func RoleOf(raw any) UserRole {
	doc, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	role, _ := doc["role"].(string)
	return UserRole(role)
}

// DecodeParent normalizes and decodes a raw users/{id} document as a Parent.
func DecodeParent(id string, raw any) (*Parent, error) {
	doc, err := userDoc(id, raw)
	if err != nil {
		return nil, err
	}
	doc["studentList"] = NormalizeIDList(doc["studentList"])

	var p Parent
	if err := remarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("%w: parent %s: %v", ErrMalformedDocument, id, err)
	}
	if p.UID == "" {
		p.UID = id
	}
	if p.StudentList == nil {
		p.StudentList = []string{}
	}
	return &p, nil
}

// DecodeStudent normalizes and decodes a raw users/{id} document as a Student.
func DecodeStudent(id string, raw any) (*Student, error) {
	doc, err := userDoc(id, raw)
	if err != nil {
		return nil, err
	}
	doc["parentsList"] = NormalizeIDList(doc["parentsList"])

	var s Student
	if err := remarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("%w: student %s: %v", ErrMalformedDocument, id, err)
	}
	if s.UID == "" {
		s.UID = id
	}
	if s.ParentsList == nil {
		s.ParentsList = []string{}
	}
	return &s, nil
}

// DecodeTeacher decodes a raw users/{id} document as a Teacher.
func DecodeTeacher(id string, raw any) (*Teacher, error) {
	doc, err := userDoc(id, raw)
	if err != nil {
		return nil, err
	}
	var t Teacher
	if err := remarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("%w: teacher %s: %v", ErrMalformedDocument, id, err)
	}
	if t.UID == "" {
		t.UID = id
	}
	return &t, nil
}

// DecodeClass normalizes and decodes a raw classes/{id} document.
func DecodeClass(id string, raw any) (*Class, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: class %s is not an object", ErrMalformedDocument, id)
	}
	doc["students"] = NormalizeIDList(doc["students"])

	var c Class
	if err := remarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("%w: class %s: %v", ErrMalformedDocument, id, err)
	}
	if c.ID == "" {
		c.ID = id
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	return &c, nil
}

// ToDocument converts a typed record into the generic map shape the store
// adapter persists.
func ToDocument(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

func userDoc(id string, raw any) (map[string]any, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: user %s is not an object", ErrMalformedDocument, id)
	}
	return doc, nil
}

func remarshal(doc map[string]any, dest any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
