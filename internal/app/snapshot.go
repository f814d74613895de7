package app

import (
	"slices"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hylla/dragboard/internal/domain"
)

// ExportVersion tags the JSON board export layout.
const ExportVersion = "dragboard.board.v1"

// Snapshot is an immutable view of the board at one version. The zero value is
// an empty board.
type Snapshot struct {
	state   *boardState
	version uint64
}

// Version counts the changes committed before this snapshot.
func (s Snapshot) Version() uint64 {
	return s.version
}

// ColumnOrder returns the column ids in render order.
func (s Snapshot) ColumnOrder() []string {
	if s.state == nil {
		return []string{}
	}
	return slices.Clone(s.state.columnOrder)
}

// Columns returns every column keyed by id.
func (s Snapshot) Columns() map[string]domain.Column {
	out := map[string]domain.Column{}
	if s.state == nil {
		return out
	}
	for id, column := range s.state.columns {
		out[id] = column.Clone()
	}
	return out
}

// Tasks returns every task keyed by id.
func (s Snapshot) Tasks() map[string]domain.Task {
	out := map[string]domain.Task{}
	if s.state == nil {
		return out
	}
	for id, task := range s.state.tasks {
		out[id] = cloneTask(task)
	}
	return out
}

// Column looks up one column.
func (s Snapshot) Column(id string) (domain.Column, bool) {
	if s.state == nil {
		return domain.Column{}, false
	}
	column, ok := s.state.columns[id]
	if !ok {
		return domain.Column{}, false
	}
	return column.Clone(), true
}

// Task looks up one task.
func (s Snapshot) Task(id string) (domain.Task, bool) {
	if s.state == nil {
		return domain.Task{}, false
	}
	task, ok := s.state.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(task), true
}

// OrderedColumns returns columns in render order.
func (s Snapshot) OrderedColumns() []domain.Column {
	if s.state == nil {
		return []domain.Column{}
	}
	out := make([]domain.Column, 0, len(s.state.columnOrder))
	for _, id := range s.state.columnOrder {
		if column, ok := s.state.columns[id]; ok {
			out = append(out, column.Clone())
		}
	}
	return out
}

// TasksInColumn returns the tasks of one column in render order.
func (s Snapshot) TasksInColumn(columnID string) []domain.Task {
	if s.state == nil {
		return []domain.Task{}
	}
	column, ok := s.state.columns[columnID]
	if !ok {
		return []domain.Task{}
	}
	out := make([]domain.Task, 0, len(column.TaskIDs))
	for _, id := range column.TaskIDs {
		if task, ok := s.state.tasks[id]; ok {
			out = append(out, cloneTask(task))
		}
	}
	return out
}

// ActiveColumnID returns the column being dragged, or "".
func (s Snapshot) ActiveColumnID() string {
	if s.state == nil {
		return ""
	}
	return s.state.activeColumn
}

// ActiveTaskID returns the task being dragged, or "".
func (s Snapshot) ActiveTaskID() string {
	if s.state == nil {
		return ""
	}
	return s.state.activeTask
}

// ColumnCount returns the number of columns.
func (s Snapshot) ColumnCount() int {
	if s.state == nil {
		return 0
	}
	return len(s.state.columns)
}

// TaskCount returns the number of tasks.
func (s Snapshot) TaskCount() int {
	if s.state == nil {
		return 0
	}
	return len(s.state.tasks)
}

// BoardExport is the JSON layout of one snapshot.
type BoardExport struct {
	Format         string         `json:"format"`
	Version        uint64         `json:"version"`
	ColumnOrder    []string       `json:"column_order"`
	Columns        []ExportColumn `json:"columns"`
	ActiveColumnID string         `json:"active_column_id,omitempty"`
	ActiveTaskID   string         `json:"active_task_id,omitempty"`
}

// ExportColumn is one column with its tasks in order.
type ExportColumn struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Tasks []ExportTask `json:"tasks"`
}

// ExportTask is one exported task record.
type ExportTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	ColumnID    string     `json:"column_id"`
}

// Export flattens the snapshot into its JSON layout.
func (s Snapshot) Export() BoardExport {
	out := BoardExport{
		Format:         ExportVersion,
		Version:        s.version,
		ColumnOrder:    s.ColumnOrder(),
		Columns:        []ExportColumn{},
		ActiveColumnID: s.ActiveColumnID(),
		ActiveTaskID:   s.ActiveTaskID(),
	}
	for _, column := range s.OrderedColumns() {
		exported := ExportColumn{
			ID:    column.ID,
			Title: column.Title,
			Tasks: []ExportTask{},
		}
		for _, task := range s.TasksInColumn(column.ID) {
			exported.Tasks = append(exported.Tasks, ExportTask{
				ID:          task.ID,
				Title:       task.Title,
				Description: task.Description,
				DueAt:       task.DueAt,
				ColumnID:    task.ColumnID,
			})
		}
		out.Columns = append(out.Columns, exported)
	}
	return out
}

// MarshalIndentJSON encodes the export with two-space indentation and a trailing newline.
func (e BoardExport) MarshalIndentJSON() ([]byte, error) {
	encoded, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}
