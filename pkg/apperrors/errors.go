package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidEntityType = errors.New("unknown entity type")
	ErrNoScope           = errors.New("no user scope in context")
)
