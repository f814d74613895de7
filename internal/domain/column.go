package domain

import (
	"slices"
	"strings"
)

// Column represents one board column and the order of the tasks it holds.
type Column struct {
	ID      string
	Title   string
	TaskIDs []string
}

// NewColumn constructs an empty column.
func NewColumn(id, title string) (Column, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	return Column{
		ID:      id,
		Title:   strings.TrimSpace(title),
		TaskIDs: []string{},
	}, nil
}

// IndexOf returns the position of taskID within the column, or -1.
func (c Column) IndexOf(taskID string) int {
	return slices.Index(c.TaskIDs, taskID)
}

// Clone returns a copy whose task order does not alias c.
func (c Column) Clone() Column {
	c.TaskIDs = slices.Clone(c.TaskIDs)
	if c.TaskIDs == nil {
		c.TaskIDs = []string{}
	}
	return c
}
