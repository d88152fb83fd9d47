package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by repositories on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)

// FieldError describes a single business-rule violation on an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
