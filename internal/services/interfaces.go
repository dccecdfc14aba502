package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateParentRequest = validator.ParentCreateRequest
type ChildSearchRequest = validator.ChildSearchRequest
type ChildUpdateRequest = validator.ChildUpdateRequest
type CreateClassRequest = validator.ClassCreateRequest
type UpdateClassRequest = validator.ClassUpdateRequest

// LinkResult reports what a link operation actually did
type LinkResult struct {
	ParentID  string `json:"parent_id"`
	StudentID string `json:"student_id"`

	// AlreadyLinked is true only when both sides referenced each other
	// before the call.
	AlreadyLinked bool `json:"already_linked"`

	// Repaired is true when exactly one side held the reference and the
	// missing side was filled in.
	Repaired bool `json:"repaired"`
}

// StudentLinkFailure describes one student that could not be linked during
// batch parent creation.
type StudentLinkFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// CreateParentResult is the outcome of the batch association workflow. A
// non-empty Failures list with a non-empty Linked list means the parent
// exists and is partially linked.
type CreateParentResult struct {
	ParentID string               `json:"parent_id"`
	Linked   []string             `json:"linked"`
	Failures []StudentLinkFailure `json:"failures,omitempty"`
}

// ChildView is a student as seen from the parent dashboard: the stored
// fields plus the resolved teacher name.
type ChildView struct {
	UID         string `json:"uid"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Birthday    string `json:"birthday,omitempty"`
	Grade       string `json:"schoolGrade,omitempty"`
	TeacherID   string `json:"teacherId,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
}

// StudentSummary is the search-result shape: enough to pick a student out
// of a list, nothing more.
type StudentSummary struct {
	UID       string `json:"uid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Birthday  string `json:"birthday,omitempty"`
	Grade     string `json:"schoolGrade,omitempty"`
}

// TeacherSummary lists a teacher for directory views
type TeacherSummary struct {
	UID       string `json:"uid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RosterImportResult reports the outcome of an XLSX roster import
type RosterImportResult struct {
	Created int                  `json:"created"`
	Skipped int                  `json:"skipped"`
	Errors  []RosterImportError  `json:"errors,omitempty"`
}

type RosterImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ===== SERVICE INTERFACES =====

// LinkService maintains the bidirectional parent-student references
type LinkService interface {
	// Link connects parent and student on both sides. It is idempotent and
	// repairs half-links; the result says which case applied.
	Link(ctx context.Context, parentID, studentID string) (*LinkResult, error)

	// Unlink removes the connection from both sides. Removing an absent
	// link is not an error.
	Unlink(ctx context.Context, parentID, studentID string) (*LinkResult, error)

	// GetChildren resolves the parent's linked students, including teacher
	// names where a student references a teacher.
	GetChildren(ctx context.Context, parentID string) ([]ChildView, error)

	// UpdateChild edits a student's core fields, only for a student linked
	// to the acting parent.
	UpdateChild(ctx context.Context, parentID, studentID string, req *ChildUpdateRequest) (*ChildView, error)

	// EnsureParentUID back-fills the uid field on the parent's own
	// document when a legacy record lacks it.
	EnsureParentUID(ctx context.Context, parentID string) error
}

// SearchService answers student and teacher lookups
type SearchService interface {
	// SearchBySubstring matches the query case-insensitively against each
	// student's full name. An empty query returns no results.
	SearchBySubstring(ctx context.Context, query string) ([]StudentSummary, error)

	// FindExact returns the students whose first name, last name and
	// birthday all match. All three criteria are required.
	FindExact(ctx context.Context, req *ChildSearchRequest) ([]StudentSummary, error)

	// FindExactForParent is FindExact restricted to students not yet
	// linked to the given parent; a lone match that is already linked
	// yields ErrAlreadyLinked.
	FindExactForParent(ctx context.Context, parentID string, req *ChildSearchRequest) ([]StudentSummary, error)

	// ListTeachers returns the teacher directory
	ListTeachers(ctx context.Context) ([]TeacherSummary, error)

	// InvalidateRoster drops the cached student roster; callers that
	// create students invoke it so searches see the change immediately.
	InvalidateRoster(ctx context.Context) error
}

// ParentService runs the batch association workflow
type ParentService interface {
	// CreateParent validates the request, creates the parent with its
	// student list, then links each selected student. Per-student link
	// failures do not abort the creation.
	CreateParent(ctx context.Context, req *CreateParentRequest) (*CreateParentResult, error)

	GetParent(ctx context.Context, id string) (*models.Parent, error)
	ListParents(ctx context.Context) ([]*models.Parent, error)
}

// ClassService manages class records
type ClassService interface {
	CreateClass(ctx context.Context, req *CreateClassRequest) (*models.Class, error)
	GetClass(ctx context.Context, id string) (*models.Class, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
	UpdateClass(ctx context.Context, id string, req *UpdateClassRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, id string) error
}

// ImportExportService moves student rosters in and out as XLSX
type ImportExportService interface {
	ImportRoster(ctx context.Context, r io.Reader) (*RosterImportResult, error)
	ExportRoster(ctx context.Context, w io.Writer) error
}

// ServiceManager aggregates all services
type ServiceManager interface {
	Link() LinkService
	Search() SearchService
	Parent() ParentService
	Class() ClassService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
