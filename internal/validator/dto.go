package validator

// AddressRequest mirrors the address block of a parent document
type AddressRequest struct {
	Street     string `json:"street" validate:"required,min=1,max=120"`
	City       string `json:"city" validate:"required,min=1,max=80"`
	PostalCode string `json:"postalCode" validate:"required,postal_code"`
}

// ParentCreateRequest is the payload for registering a parent account and
// linking it to the selected students in one call.
type ParentCreateRequest struct {
	FirstName    string         `json:"firstName" validate:"required,min=1,max=80"`
	LastName     string         `json:"lastName" validate:"required,min=1,max=80"`
	Email        string         `json:"email" validate:"required,email"`
	Telephone    string         `json:"telephone" validate:"required,telephone"`
	Password     string         `json:"password" validate:"required,min=6"`
	Address      AddressRequest `json:"address" validate:"required"`
	SchoolName   string         `json:"schoolName" validate:"omitempty,max=120"`
	Title        string         `json:"title" validate:"required,oneof=Mr. Mrs."`
	NationalID   string         `json:"nationalId" validate:"required,national_id"`
	AcademicRole string         `json:"academicRole" validate:"required,oneof=Father Mother Guardian"`
	StudentIDs   []string       `json:"studentIds" validate:"omitempty,dive,min=1"`
}

// ChildSearchRequest carries the exact-match criteria. All three fields are
// required together; partial criteria are rejected before any lookup.
type ChildSearchRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1"`
	LastName  string `json:"lastName" validate:"required,min=1"`
	Birthday  string `json:"birthday" validate:"required,birthday"`
}

// ChildUpdateRequest carries the fields a parent may edit on a linked child.
// Nil pointers leave the stored field untouched.
type ChildUpdateRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=80"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=80"`
	Birthday  *string `json:"birthday" validate:"omitempty,birthday"`
	Grade     *string `json:"schoolGrade" validate:"omitempty,max=20"`
}

// ClassCreateRequest is the payload for creating a class
type ClassCreateRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=80"`
	Level    string   `json:"level" validate:"required,min=1,max=20"`
	Teacher  *string  `json:"teacher" validate:"omitempty,min=1"`
	Students []string `json:"students" validate:"omitempty,dive,min=1"`
}

// ClassUpdateRequest is the payload for updating a class
type ClassUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=80"`
	Level    *string  `json:"level" validate:"omitempty,min=1,max=20"`
	Teacher  *string  `json:"teacher" validate:"omitempty,min=1"`
	Students []string `json:"students" validate:"omitempty,dive,min=1"`
}
