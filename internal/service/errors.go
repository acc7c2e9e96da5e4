package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/validation"
)

var (
	// ErrUnauthorized indicates the actor may not perform the operation.
	ErrUnauthorized = errors.New("not authorized for this operation")
	// ErrInvalidTransition indicates the enrollment or tutor is not in the required state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateEnrollment indicates the student already has an enrollment with the tutor.
	ErrDuplicateEnrollment = errors.New("enrollment with this tutor already exists")
	// ErrDuplicateReview indicates the student already reviewed the tutor.
	ErrDuplicateReview = errors.New("tutor already reviewed")
	// ErrNotEligible indicates the student has no approved enrollment with the tutor.
	ErrNotEligible = errors.New("an approved enrollment is required")
	// ErrInvalidInput indicates the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")

	ErrAccountNotFound    = errors.New("account not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrUniversityNotFound = errors.New("university not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSettingsNotFound   = errors.New("platform settings not initialised")

	// ErrAffiliationInUse indicates the affiliation is still referenced.
	ErrAffiliationInUse = errors.New("affiliation is still in use")
	// ErrDuplicateAffiliation indicates the name is already taken at that level.
	ErrDuplicateAffiliation = errors.New("affiliation with this name already exists")

	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrAccountPendingApproval = errors.New("tutor account awaiting approval")
	ErrUsernameTaken          = errors.New("username already taken")
	ErrEmailTaken             = errors.New("email already registered")
)

// InputError carries per-field validation messages. It matches ErrInvalidInput
// under errors.Is.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, e.Fields[key])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidField(field, message string) error {
	return &InputError{Fields: map[string]string{field: message}}
}

func validateStruct(validate *validator.Validate, payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fields := validation.Translate(err); fields != nil {
		return &InputError{Fields: fields}
	}
	return err
}
