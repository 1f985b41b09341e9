package services

import (
	"errors"

	"github.com/Itish41/Poligap/repository"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrInvalidTransition is returned for a task status change that is not allowed.
	ErrInvalidTransition = errors.New("invalid task status transition")

	// ErrStorageUnavailable is returned when no object store is configured.
	ErrStorageUnavailable = errors.New("file storage is not configured")

	// ErrSearchUnavailable is returned when Elasticsearch is not configured.
	ErrSearchUnavailable = errors.New("search is not configured")
)

// ValidationError is a bad-input error; its message is shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
