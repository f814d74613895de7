package domain

import "strings"

// ItemKind discriminates the two draggable entity kinds.
type ItemKind string

// ItemKind values.
const (
	KindColumn ItemKind = "column"
	KindTask   ItemKind = "task"
)

// ParseItemKind normalizes raw input into a known item kind.
func ParseItemKind(raw string) (ItemKind, error) {
	switch ItemKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindColumn:
		return KindColumn, nil
	case KindTask:
		return KindTask, nil
	default:
		return "", ErrInvalidKind
	}
}

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == KindColumn || k == KindTask
}

// DragEvent carries one drag-start, drag-over, or drag-end notification.
// An empty OverID means the pointer is not over a valid drop target.
type DragEvent struct {
	ActiveID   string
	ActiveKind ItemKind
	OverID     string
	OverKind   ItemKind
}

// HasTarget reports whether the event names a drop target.
func (e DragEvent) HasTarget() bool {
	return strings.TrimSpace(e.OverID) != ""
}
