package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the guardian domain. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrParentNotFound     = fmt.Errorf("parent %w", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("student %w", ErrNotFound)
	ErrTeacherNotFound    = fmt.Errorf("teacher %w", ErrNotFound)
	ErrClassNotFound      = fmt.Errorf("class %w", ErrNotFound)
	ErrValidationFailed   = errors.New("validation failed")
	ErrNoStudentsSelected = errors.New("no students selected")

	// ErrIncompleteCriteria rejects an exact search before any lookup when
	// first name, last name and birthday are not all present.
	ErrIncompleteCriteria = errors.New("incomplete search criteria")

	// ErrAlreadyLinked reports that the parent-student link exists on both
	// sides already.
	ErrAlreadyLinked = errors.New("student already linked to parent")

	// ErrNotLinked guards child operations that require an existing link
	ErrNotLinked = errors.New("student not linked to parent")

	ErrUnauthorized = errors.New("unauthorized")
)
