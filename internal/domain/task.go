package domain

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	Title       string
	Description string
	DueAt       *time.Time
	ColumnID    string
}

type TaskInput struct {
	ID          string
	ColumnID    string
	Title       string
	Description string
	DueAt       *time.Time
}

func NewTask(in TaskInput) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.ColumnID == "" {
		return Task{}, ErrInvalidColumnID
	}

	return Task{
		ID:          in.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		DueAt:       normalizeDueAt(in.DueAt),
		ColumnID:    in.ColumnID,
	}, nil
}

func (t *Task) UpdateDetails(title, description string, dueAt *time.Time) {
	t.Title = strings.TrimSpace(title)
	t.Description = strings.TrimSpace(description)
	t.DueAt = normalizeDueAt(dueAt)
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}
