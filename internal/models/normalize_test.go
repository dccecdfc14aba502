package models

import (
	"reflect"
	"testing"
)

func TestNormalizeIDList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "nil reads as empty", in: nil, want: []string{}},
		{name: "array passes through", in: []any{"s1", "s2"}, want: []string{"s1", "s2"}},
		{
			name: "keyed map coerces in key order",
			in:   map[string]any{"1": "s2", "0": "s1"},
			want: []string{"s1", "s2"},
		},
		{
			name: "numeric keys sort numerically not lexically",
			in:   map[string]any{"10": "s11", "2": "s3", "9": "s10"},
			want: []string{"s3", "s10", "s11"},
		},
		{
			name: "non-numeric keys sort lexically",
			in:   map[string]any{"b": "s2", "a": "s1"},
			want: []string{"s1", "s2"},
		},
		{name: "duplicates dropped", in: []any{"s1", "s1", "s2"}, want: []string{"s1", "s2"}},
		{name: "non-string entries skipped", in: []any{"s1", 42.0, ""}, want: []string{"s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIDList(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIDListIdempotent(t *testing.T) {
	legacy := map[string]any{"0": "s1", "1": "s2"}
	once := NormalizeIDList(legacy)
	twice := NormalizeIDList(any(toAnySlice(once)))
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization not idempotent: %v vs %v", once, twice)
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func TestDecodeParent(t *testing.T) {
	raw := map[string]any{
		"firstName":    "Nadia",
		"lastName":     "Karim",
		"role":         "Parent",
		"academicRole": "Mother",
		"studentList":  map[string]any{"0": "s1", "1": "s2"},
		"studentCount": 2.0,
	}
	p, err := DecodeParent("p1", raw)
	if err != nil {
		t.Fatalf("DecodeParent() error = %v", err)
	}
	if p.UID != "p1" {
		t.Errorf("UID = %q, want p1 (back-filled from path)", p.UID)
	}
	if !reflect.DeepEqual(p.StudentList, []string{"s1", "s2"}) {
		t.Errorf("StudentList = %v, want [s1 s2]", p.StudentList)
	}
	if p.StudentCount != 2 {
		t.Errorf("StudentCount = %d, want 2", p.StudentCount)
	}
}

func TestDecodeParentMissingList(t *testing.T) {
	p, err := DecodeParent("p1", map[string]any{"role": "Parent"})
	if err != nil {
		t.Fatalf("DecodeParent() error = %v", err)
	}
	if p.StudentList == nil || len(p.StudentList) != 0 {
		t.Errorf("missing studentList should read as empty list, got %v", p.StudentList)
	}
}

func TestDecodeParentMalformed(t *testing.T) {
	if _, err := DecodeParent("p1", "not an object"); err == nil {
		t.Fatal("expected error for non-object document")
	}
}

func TestDecodeStudentGradeFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{name: "schoolGrade wins", raw: map[string]any{"schoolGrade": "5A", "grade": "4B"}, want: "5A"},
		{name: "falls back to grade", raw: map[string]any{"grade": "4B"}, want: "4B"},
		{name: "both absent", raw: map[string]any{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw["role"] = "Student"
			s, err := DecodeStudent("s1", tt.raw)
			if err != nil {
				t.Fatalf("DecodeStudent() error = %v", err)
			}
			if got := s.EffectiveGrade(); got != tt.want {
				t.Errorf("EffectiveGrade() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToDocumentRoundTrip(t *testing.T) {
	p := &Parent{
		UID:          "p1",
		FirstName:    "Nadia",
		Role:         RoleParent,
		AcademicRole: AcademicMother,
		StudentList:  []string{"s1", "s2"},
		StudentCount: 2,
	}
	doc, err := ToDocument(p)
	if err != nil {
		t.Fatalf("ToDocument() error = %v", err)
	}
	back, err := DecodeParent("p1", doc)
	if err != nil {
		t.Fatalf("DecodeParent() error = %v", err)
	}
	if !reflect.DeepEqual(back.StudentList, p.StudentList) {
		t.Errorf("round-trip list = %v, want %v", back.StudentList, p.StudentList)
	}
}
