package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

func validCreateParentRequest(studentIDs ...string) *CreateParentRequest {
	return &CreateParentRequest{
		FirstName: "Max",
		LastName:  "Muster",
		Email:     "max@example.com",
		Telephone: "061234567",
		Password:  "secret1",
		Address: validator.AddressRequest{
			Street:     "Hauptstrasse 1",
			City:       "Basel",
			PostalCode: "4051",
		},
		Title:        "Mr.",
		NationalID:   "12345678",
		AcademicRole: "Father",
		StudentIDs:   studentIDs,
	}
}

func TestCreateParentLinksAllStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)
	env.seedStudent(t, "s2", "Ben", "Alt", nil)

	result, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("s1", "s2"))
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}
	if result.ParentID == "" {
		t.Fatal("empty parent id")
	}
	if len(result.Linked) != 2 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v", result)
	}

	parentDoc := env.readDoc(t, "users/"+result.ParentID)
	if parentDoc["uid"] != result.ParentID {
		t.Errorf("uid = %v, want %s", parentDoc["uid"], result.ParentID)
	}
	if parentDoc["studentCount"] != float64(2) {
		t.Errorf("studentCount = %v, want 2", parentDoc["studentCount"])
	}

	for _, sid := range []string{"s1", "s2"} {
		doc := env.readDoc(t, "users/"+sid)
		list, _ := doc["parentsList"].([]any)
		if len(list) != 1 || list[0] != result.ParentID {
			t.Errorf("student %s parentsList = %v", sid, doc["parentsList"])
		}
	}

	types := eventTypes(env.publisher.GetPublishedEvents())
	found := false
	for _, typ := range types {
		if typ == events.EventParentCreated {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, want %s among them", types, events.EventParentCreated)
	}
}

func TestCreateParentReportsMissingStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)
	env.seedStudent(t, "s3", "Clara", "Dorn", nil)

	result, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("s1", "s2", "s3"))
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}
	if len(result.Linked) != 2 {
		t.Errorf("linked = %v, want s1 and s3", result.Linked)
	}
	if len(result.Failures) != 1 || result.Failures[0].StudentID != "s2" {
		t.Fatalf("failures = %+v, want one failure for s2", result.Failures)
	}

	// the full selection is authoritative: the missing student stays in the
	// parent's list so a later repair can complete the link
	parentDoc := env.readDoc(t, "users/"+result.ParentID)
	list, _ := parentDoc["studentList"].([]any)
	want := []string{"s1", "s2", "s3"}
	if len(list) != len(want) {
		t.Fatalf("studentList = %v, want %v", parentDoc["studentList"], want)
	}
	for i, id := range want {
		if list[i] != id {
			t.Errorf("studentList[%d] = %v, want %s", i, list[i], id)
		}
	}
	if parentDoc["studentCount"] != float64(3) {
		t.Errorf("studentCount = %v, want 3", parentDoc["studentCount"])
	}
}

func TestCreateParentDeduplicatesSelection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)

	result, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("s1", "s1", "s1"))
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}
	if len(result.Linked) != 1 {
		t.Errorf("linked = %v, want single s1", result.Linked)
	}

	studentDoc := env.readDoc(t, "users/s1")
	if list, _ := studentDoc["parentsList"].([]any); len(list) != 1 {
		t.Errorf("parentsList = %v, want one entry", studentDoc["parentsList"])
	}
}

func TestCreateParentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)

	req := validCreateParentRequest("s1")
	req.Email = "broken"
	if _, err := env.manager.Parent().CreateParent(ctx, req); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}

	if _, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest()); !errors.Is(err, ErrNoStudentsSelected) {
		t.Errorf("expected ErrNoStudentsSelected, got %v", err)
	}

	// selecting only missing students is not a validation error: the parent
	// is still created with its selection, every link reported as failed
	result, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("ghost"))
	if err != nil {
		t.Fatalf("CreateParent with unresolvable selection: %v", err)
	}
	if len(result.Linked) != 0 || len(result.Failures) != 1 {
		t.Errorf("result = %+v, want no links and one failure", result)
	}
	parentDoc := env.readDoc(t, "users/"+result.ParentID)
	if list, _ := parentDoc["studentList"].([]any); len(list) != 1 || list[0] != "ghost" {
		t.Errorf("studentList = %v, want [ghost]", parentDoc["studentList"])
	}
}

func TestGetParentHidesPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)
	result, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("s1"))
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}

	parent, err := env.manager.Parent().GetParent(ctx, result.ParentID)
	if err != nil {
		t.Fatalf("GetParent: %v", err)
	}
	if parent.Password != "" {
		t.Error("password leaked through GetParent")
	}
	if parent.StudentCount != 1 {
		t.Errorf("studentCount = %d, want 1", parent.StudentCount)
	}
}

func TestListParents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedStudent(t, "s1", "Anna", "Becker", nil)
	if _, err := env.manager.Parent().CreateParent(ctx, validCreateParentRequest("s1")); err != nil {
		t.Fatalf("CreateParent: %v", err)
	}
	// students and teachers must not appear in the listing
	env.seedUser(t, "t1", map[string]any{"role": "Teacher", "firstName": "Maria", "lastName": "Lehrer"})

	parents, err := env.manager.Parent().ListParents(ctx)
	if err != nil {
		t.Fatalf("ListParents: %v", err)
	}
	if len(parents) != 1 {
		t.Fatalf("got %d parents, want 1", len(parents))
	}
	if parents[0].Password != "" {
		t.Error("password leaked through ListParents")
	}
	if parents[0].Frozen != true || parents[0].DataCompleted != true {
		t.Errorf("lifecycle flags frozen=%v dataCompleted=%v, want both true", parents[0].Frozen, parents[0].DataCompleted)
	}
}
