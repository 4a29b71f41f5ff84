package scene

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("shape not found")
	ErrDuplicateID = errors.New("duplicate shape id")
)

// NotFoundError reports an operation on a shape id the scene does not hold.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("shape %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateIDError reports an insert whose id is already taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("shape id %q already exists", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }
