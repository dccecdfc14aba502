package kvstore

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/store"
)

func newTestRepository(t *testing.T) (repositories.Repository, store.Adapter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	adapter := store.NewRedisStore(client)
	repo := NewKVRepository(RepositoryConfig{Adapter: adapter, Logger: slog.Default()})
	return repo, adapter
}

func seedUser(t *testing.T, adapter store.Adapter, id string, doc map[string]any) {
	t.Helper()
	if err := adapter.WriteDocument(context.Background(), "users/"+id, doc); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func TestGetStudentNormalizesLegacyList(t *testing.T) {
	repo, adapter := newTestRepository(t)
	ctx := context.Background()

	seedUser(t, adapter, "s1", map[string]any{
		"firstName":   "Anna",
		"lastName":    "Becker",
		"role":        "Student",
		"parentsList": map[string]any{"k1": "p1", "k2": "p2"},
	})

	student, err := repo.User().GetStudent(ctx, "s1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if len(student.ParentsList) != 2 || student.ParentsList[0] != "p1" || student.ParentsList[1] != "p2" {
		t.Errorf("parentsList = %v, want [p1 p2]", student.ParentsList)
	}
	if student.UID != "s1" {
		t.Errorf("uid = %q, want s1", student.UID)
	}
}

func TestGetStudentMissingListIsEmpty(t *testing.T) {
	repo, adapter := newTestRepository(t)

	seedUser(t, adapter, "s1", map[string]any{
		"firstName": "Anna",
		"role":      "Student",
	})

	student, err := repo.User().GetStudent(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if student.ParentsList == nil || len(student.ParentsList) != 0 {
		t.Errorf("parentsList = %v, want empty non-nil slice", student.ParentsList)
	}
}

func TestGetParentRoleMismatch(t *testing.T) {
	repo, adapter := newTestRepository(t)

	seedUser(t, adapter, "s1", map[string]any{"firstName": "Anna", "role": "Student"})

	_, err := repo.User().GetParent(context.Background(), "s1")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for role mismatch, got %v", err)
	}
}

func TestGetParentAbsent(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.User().GetParent(context.Background(), "nope")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStudentsFiltersByRole(t *testing.T) {
	repo, adapter := newTestRepository(t)

	seedUser(t, adapter, "s1", map[string]any{"firstName": "Anna", "role": "Student"})
	seedUser(t, adapter, "s2", map[string]any{"firstName": "Ben", "role": "Student"})
	seedUser(t, adapter, "t1", map[string]any{"firstName": "Frau", "role": "Teacher"})
	seedUser(t, adapter, "p1", map[string]any{"firstName": "Max", "role": "Parent"})

	students, err := repo.User().ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("got %d students, want 2", len(students))
	}

	teachers, err := repo.User().ListTeachers(context.Background())
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(teachers) != 1 {
		t.Fatalf("got %d teachers, want 1", len(teachers))
	}
}

func TestCreateParentAssignsIDAndUID(t *testing.T) {
	repo, adapter := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.User().CreateParent(ctx, &models.Parent{
		FirstName:   "Max",
		LastName:    "Muster",
		Email:       "max@example.com",
		StudentList: []string{"s1"},
	})
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}
	if id == "" {
		t.Fatal("empty parent id")
	}

	raw, err := adapter.ReadSubtree(ctx, "users/"+id)
	if err != nil {
		t.Fatalf("ReadSubtree: %v", err)
	}
	doc := raw.(map[string]any)
	if doc["uid"] != id {
		t.Errorf("stored uid = %v, want %s", doc["uid"], id)
	}
	if doc["role"] != "Parent" {
		t.Errorf("stored role = %v, want Parent", doc["role"])
	}
	if doc["studentCount"] != float64(1) {
		t.Errorf("studentCount = %v, want 1", doc["studentCount"])
	}
}

func TestPatchStudentPreservesSiblings(t *testing.T) {
	repo, adapter := newTestRepository(t)
	ctx := context.Background()

	seedUser(t, adapter, "s1", map[string]any{
		"firstName": "Anna",
		"role":      "Student",
	})

	if err := repo.User().PatchStudent(ctx, "s1", map[string]any{
		"parentsList": []string{"p1"},
	}); err != nil {
		t.Fatalf("PatchStudent: %v", err)
	}

	student, err := repo.User().GetStudent(ctx, "s1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if student.FirstName != "Anna" {
		t.Errorf("firstName lost on patch: %q", student.FirstName)
	}
	if len(student.ParentsList) != 1 || student.ParentsList[0] != "p1" {
		t.Errorf("parentsList = %v, want [p1]", student.ParentsList)
	}
}

func TestPatchParentAbsentFails(t *testing.T) {
	repo, _ := newTestRepository(t)

	err := repo.User().PatchParent(context.Background(), "nope", map[string]any{"studentCount": 0})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClassRoundTrip(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	teacher := "t1"
	class := &models.Class{
		ID:       "class_1700000000000",
		Name:     "3a",
		Level:    "3",
		Teacher:  &teacher,
		Students: []string{"s1", "s2"},
	}
	if err := repo.Class().CreateClass(ctx, class); err != nil {
		t.Fatalf("CreateClass: %v", err)
	}

	got, err := repo.Class().GetClass(ctx, class.ID)
	if err != nil {
		t.Fatalf("GetClass: %v", err)
	}
	if got.Name != "3a" || len(got.Students) != 2 {
		t.Errorf("class = %+v", got)
	}

	got.Name = "3b"
	if err := repo.Class().UpdateClass(ctx, got); err != nil {
		t.Fatalf("UpdateClass: %v", err)
	}

	list, err := repo.Class().ListClasses(ctx)
	if err != nil {
		t.Fatalf("ListClasses: %v", err)
	}
	if len(list) != 1 || list[0].Name != "3b" {
		t.Errorf("list = %+v", list)
	}

	if err := repo.Class().DeleteClass(ctx, class.ID); err != nil {
		t.Fatalf("DeleteClass: %v", err)
	}
	if _, err := repo.Class().GetClass(ctx, class.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListStudentsOrderedByID(t *testing.T) {
	repo, adapter := newTestRepository(t)
	ctx := context.Background()

	// seed out of order; listings must come back sorted by id
	for _, id := range []string{"s3", "s1", "s2"} {
		seedUser(t, adapter, id, map[string]any{
			"firstName": "Kid", "lastName": id, "role": "Student",
		})
	}

	students, err := repo.User().ListStudents(ctx)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("got %d students, want 3", len(students))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if students[i].UID != want {
			t.Errorf("students[%d] = %s, want %s", i, students[i].UID, want)
		}
	}
}
