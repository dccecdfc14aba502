package models

type UserRole string

const (
	RoleParent  UserRole = "Parent"
	RoleStudent UserRole = "Student"
	RoleTeacher UserRole = "Teacher"
	RoleAdmin   UserRole = "Admin"
)

type AcademicRole string

const (
	AcademicFather   AcademicRole = "Father"
	AcademicMother   AcademicRole = "Mother"
	AcademicGuardian AcademicRole = "Guardian"
)

// Address is the nested address object stored on Parent documents.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Parent is a guardian record stored under users/{uid} with role "Parent".
// StudentList holds the linked Student ids in link-creation order and
// StudentCount must equal len(StudentList) after every synchronizer write.
type Parent struct {
	UID          string       `json:"uid"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Telephone    string       `json:"telephone"`
	Password     string       `json:"password,omitempty"`
	Address      Address      `json:"address"`
	SchoolName   string       `json:"schoolName"`
	Title        string       `json:"title"`
	NationalID   string       `json:"nationalId"`
	Role         UserRole     `json:"role"`
	AcademicRole AcademicRole `json:"academicRole"`

	StudentList  []string `json:"studentList"`
	StudentCount int      `json:"studentCount"`

	// Lifecycle flags: a parent record is created fully populated and then
	// frozen pending account activation.
	DataCompleted bool  `json:"dataCompleted"`
	Frozen        bool  `json:"frozen"`
	CreatedAt     int64 `json:"createdAt"` // unix milliseconds
}

// Student is a pupil record stored under users/{uid} with role "Student".
// Old records persisted the grade under either "schoolGrade" or "grade";
// readers must fall back across both (see EffectiveGrade).
type Student struct {
	UID       string   `json:"uid"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Birthday  string   `json:"birthday"` // YYYY-MM-DD
	Role      UserRole `json:"role"`

	Grade       string `json:"schoolGrade,omitempty"`
	LegacyGrade string `json:"grade,omitempty"`

	ParentsList     []string `json:"parentsList"`
	LinkedTeacherID string   `json:"linkedTeacherId,omitempty"`
	LinkedSchoolID  string   `json:"linkedSchoolId,omitempty"`
}

// EffectiveGrade resolves the legacy field-name duality.
func (s *Student) EffectiveGrade() string {
	if s.Grade != "" {
		return s.Grade
	}
	return s.LegacyGrade
}

// FullName returns "first last" as used for roster sorting and search.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Teacher is stored under users/{uid} with role "Teacher". Teachers are
// associated with classes through the Class record's teacher field.
type Teacher struct {
	UID       string   `json:"uid"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email,omitempty"`
	Role      UserRole `json:"role"`
}

func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}
