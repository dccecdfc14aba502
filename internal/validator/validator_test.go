package validator

import "testing"

func validParentRequest() ParentCreateRequest {
	return ParentCreateRequest{
		FirstName: "Max",
		LastName:  "Muster",
		Email:     "max@example.com",
		Telephone: "061234567",
		Password:  "secret1",
		Address: AddressRequest{
			Street:     "Hauptstrasse 1",
			City:       "Basel",
			PostalCode: "4051",
		},
		Title:        "Mr.",
		NationalID:   "12345678",
		AcademicRole: "Father",
		StudentIDs:   []string{"s1"},
	}
}

func TestParentCreateRequestValidation(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(*ParentCreateRequest)
		wantErr bool
	}{
		{"valid", func(r *ParentCreateRequest) {}, false},
		{"missing first name", func(r *ParentCreateRequest) { r.FirstName = "" }, true},
		{"bad email", func(r *ParentCreateRequest) { r.Email = "not-an-email" }, true},
		{"short telephone", func(r *ParentCreateRequest) { r.Telephone = "1234567" }, true},
		{"telephone with letters", func(r *ParentCreateRequest) { r.Telephone = "06123456a" }, true},
		{"short password", func(r *ParentCreateRequest) { r.Password = "12345" }, true},
		{"bad postal code", func(r *ParentCreateRequest) { r.Address.PostalCode = "123" }, true},
		{"bad national id", func(r *ParentCreateRequest) { r.NationalID = "1234567" }, true},
		{"bad title", func(r *ParentCreateRequest) { r.Title = "Dr." }, true},
		{"bad academic role", func(r *ParentCreateRequest) { r.AcademicRole = "Uncle" }, true},
		{"no students is allowed by shape", func(r *ParentCreateRequest) { r.StudentIDs = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validParentRequest()
			tt.mutate(&req)
			errs := v.Validate(&req)
			if tt.wantErr && !errs.HasErrors() {
				t.Error("expected validation errors, got none")
			}
			if !tt.wantErr && errs.HasErrors() {
				t.Errorf("unexpected validation errors: %v", errs)
			}
		})
	}
}

func TestChildSearchRequestRequiresAllFields(t *testing.T) {
	v := New()

	errs := v.Validate(&ChildSearchRequest{FirstName: "Anna", LastName: "Becker"})
	if !errs.HasErrors() {
		t.Error("expected error for missing birthday")
	}

	errs = v.Validate(&ChildSearchRequest{FirstName: "Anna", LastName: "Becker", Birthday: "2015-03-02"})
	if errs.HasErrors() {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestBirthdayFormat(t *testing.T) {
	v := New()

	for _, bad := range []string{"02.03.2015", "2015-3-2", "2015/03/02", "not a date"} {
		errs := v.Validate(&ChildSearchRequest{FirstName: "Anna", LastName: "Becker", Birthday: bad})
		if !errs.HasErrors() {
			t.Errorf("birthday %q accepted, want YYYY-MM-DD rejection", bad)
		}
	}

	// the update DTO applies the same rule only when the field is present
	bad := "03/02/2015"
	if errs := v.Validate(&ChildUpdateRequest{Birthday: &bad}); !errs.HasErrors() {
		t.Errorf("birthday %q accepted on update", bad)
	}
	if errs := v.Validate(&ChildUpdateRequest{}); errs.HasErrors() {
		t.Errorf("empty update rejected: %v", errs)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	v := New()
	errs := v.Validate(&ChildSearchRequest{})
	if !errs.HasErrors() {
		t.Fatal("expected errors")
	}
	if errs.Error() == "" {
		t.Error("expected non-empty error message")
	}
}
