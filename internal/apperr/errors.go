// Package apperr holds the sentinel errors shared by the service layers.
package apperr

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrAlreadyExists        = errors.New("already exists")
	ErrFixedComponent       = errors.New("header and footer components cannot be moved or deleted")
	ErrInvalidComponentType = errors.New("invalid component type")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrGenerating           = errors.New("a reply is already being generated")
	ErrDisabled             = errors.New("feature is not configured")
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("access denied")
)
