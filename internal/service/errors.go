package service

import (
	"errors"
	"fmt"
)

const (
	MaxPageLimit = 100
)

var (
	// ErrInvalidArgument is returned for caller input that is rejected before
	// touching storage
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPagination is an ErrInvalidArgument for out of range skip/limit
	ErrInvalidPagination = fmt.Errorf("%w: skip must be >= 0 and limit between 1 and %d", ErrInvalidArgument, MaxPageLimit)
	ErrConflict          = errors.New("conflict")
	// ErrInvalidTransition is a conflict raised by the guarded status update
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrConflict)
	ErrNotFound          = errors.New("not found")
)

// StorageError wraps a failure of the persistence layer
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op, id string, err error) error {
	return &StorageError{Op: op, ID: id, Err: err}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ValidatePagination checks the skip/limit window accepted by every paged listing
func ValidatePagination(skip, limit int) error {
	if skip < 0 || limit < 1 || limit > MaxPageLimit {
		return ErrInvalidPagination
	}
	return nil
}
