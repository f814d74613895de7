package app

import (
	"errors"
	"fmt"

	"github.com/hylla/dragboard/internal/domain"
)

// ErrReferenceNotFound and related errors describe board operation outcomes.
var (
	ErrReferenceNotFound  = errors.New("reference not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrInvariantViolation = errors.New("board invariant violated")
)

// ReferenceError reports an operation that named an id absent from the board.
type ReferenceError struct {
	Op   string
	Kind domain.ItemKind
	ID   string
}

// Error implements error.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", e.Op, e.Kind, e.ID, ErrReferenceNotFound)
}

// Is reports whether target is ErrReferenceNotFound.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// missingColumn builds a ReferenceError for a column id.
func missingColumn(op, id string) error {
	return &ReferenceError{Op: op, Kind: domain.KindColumn, ID: id}
}

// missingTask builds a ReferenceError for a task id.
func missingTask(op, id string) error {
	return &ReferenceError{Op: op, Kind: domain.KindTask, ID: id}
}
