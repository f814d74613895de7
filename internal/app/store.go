package app

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/dragboard/internal/domain"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store owns one board: the entity repository, the order index and the
// active-selection tracker. Every mutating call commits a new immutable
// snapshot or leaves the board untouched.
type Store struct {
	mu        sync.Mutex
	cur       *boardState
	version   uint64
	lastMove  moveIntent
	logger    Logger
	observers map[int]Observer
	nextObsID int
}

// boardState is never mutated once published.
type boardState struct {
	columns      map[string]domain.Column
	columnOrder  []string
	tasks        map[string]domain.Task
	activeColumn string
	activeTask   string
}

// moveIntent identifies one move call and the board version after it.
type moveIntent struct {
	op       string
	activeID string
	overID   string
	overKind domain.ItemKind
	version  uint64
}

// NewStore constructs an empty board.
func NewStore(opts ...Option) *Store {
	s := &Store{
		cur: &boardState{
			columns:     map[string]domain.Column{},
			columnOrder: []string{},
			tasks:       map[string]domain.Task{},
		},
		logger:    charmLog.New(io.Discard),
		observers: map[int]Observer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Snapshot returns the current board.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{state: s.cur, version: s.version}
}

// Subscribe registers fn for every published change and returns a func that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// AddColumn appends a new empty column to the board.
func (s *Store) AddColumn(column domain.Column) error {
	return s.update("add_column", func(d *draft) error {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return domain.ErrInvalidID
		}
		if _, ok := d.column(id); ok {
			return fmt.Errorf("%w: column %q", ErrDuplicateID, id)
		}
		d.putColumn(domain.Column{ID: id, Title: column.Title, TaskIDs: []string{}})
		d.setColumnOrder(append(slices.Clone(d.next.columnOrder), id))
		return nil
	})
}

// RenameColumn replaces a column title.
func (s *Store) RenameColumn(columnID, title string) error {
	return s.update("rename_column", func(d *draft) error {
		column, ok := d.column(columnID)
		if !ok {
			return missingColumn("rename_column", columnID)
		}
		title = strings.TrimSpace(title)
		if column.Title == title {
			return nil
		}
		column.Title = title
		d.putColumn(column)
		return nil
	})
}

// DeleteColumn removes a column and every task it holds.
func (s *Store) DeleteColumn(columnID string) error {
	return s.update("delete_column", func(d *draft) error {
		column, ok := d.column(columnID)
		if !ok {
			return missingColumn("delete_column", columnID)
		}
		for _, taskID := range column.TaskIDs {
			d.removeTask(taskID)
			if d.next.activeTask == taskID {
				d.setActive(d.next.activeColumn, "")
			}
		}
		d.setColumnOrder(removeID(d.next.columnOrder, columnID))
		d.removeColumn(columnID)
		if d.next.activeColumn == columnID {
			d.setActive("", d.next.activeTask)
		}
		return nil
	})
}

// AddTask appends a task to the end of its column.
func (s *Store) AddTask(task domain.Task) error {
	return s.update("add_task", func(d *draft) error {
		id := strings.TrimSpace(task.ID)
		if id == "" {
			return domain.ErrInvalidID
		}
		column, ok := d.column(task.ColumnID)
		if !ok {
			return missingColumn("add_task", task.ColumnID)
		}
		if _, exists := d.task(id); exists {
			return fmt.Errorf("%w: task %q", ErrDuplicateID, id)
		}
		task.ID = id
		d.putTask(cloneTask(task))
		column.TaskIDs = insertAt(column.TaskIDs, len(column.TaskIDs), id)
		d.putColumn(column)
		return nil
	})
}

// UpdateTask replaces the content fields of a task.
func (s *Store) UpdateTask(taskID, title, description string, dueAt *time.Time) error {
	return s.update("update_task", func(d *draft) error {
		task, ok := d.task(taskID)
		if !ok {
			return missingTask("update_task", taskID)
		}
		task.UpdateDetails(title, description, dueAt)
		d.putTask(task)
		return nil
	})
}

// DeleteTask removes a task from its column and from the board. The column is
// read from the task record; columnID is only a hint.
func (s *Store) DeleteTask(taskID, columnID string) error {
	return s.update("delete_task", func(d *draft) error {
		task, ok := d.task(taskID)
		if !ok {
			return missingTask("delete_task", taskID)
		}
		if columnID != "" && columnID != task.ColumnID {
			s.logger.Debug("stale column hint ignored", "op", "delete_task", "task_id", taskID, "hint", columnID, "column_id", task.ColumnID)
		}
		if column, ok := d.column(task.ColumnID); ok {
			column.TaskIDs = removeID(column.TaskIDs, taskID)
			d.putColumn(column)
		}
		d.removeTask(taskID)
		if d.next.activeTask == taskID {
			d.setActive(d.next.activeColumn, "")
		}
		return nil
	})
}

// SetActiveColumnID records the column being dragged; "" clears it.
func (s *Store) SetActiveColumnID(id string) {
	_ = s.update("set_active_column", func(d *draft) error {
		d.setActive(id, d.next.activeTask)
		return nil
	})
}

// SetActiveTaskID records the task being dragged; "" clears it.
func (s *Store) SetActiveTaskID(id string) {
	_ = s.update("set_active_task", func(d *draft) error {
		d.setActive(d.next.activeColumn, id)
		return nil
	})
}

// update runs fn against a draft of the current board and publishes the draft
// when it changed. Helpers validate before writing, so an error leaves the
// draft clean; DragEnd commits its tracker reset next to a rejected move.
func (s *Store) update(op string, fn func(*draft) error) error {
	s.mu.Lock()
	d := newDraft(s.cur)
	err := fn(d)
	if !d.dirty {
		s.remember(d.intent)
		s.mu.Unlock()
		s.report(op, err)
		return err
	}

	next := d.next
	s.cur = &next
	s.version++
	s.remember(d.intent)
	snap := Snapshot{state: s.cur, version: s.version}
	observers := make([]Observer, 0, len(s.observers))
	for _, id := range slices.Sorted(maps.Keys(s.observers)) {
		observers = append(observers, s.observers[id])
	}
	s.mu.Unlock()

	s.report(op, err)
	for _, observe := range observers {
		observe(snap)
	}
	return err
}

// report logs the outcome of one operation.
func (s *Store) report(op string, err error) {
	if err == nil {
		return
	}
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		s.logger.Warn("reference not found", "op", op, "kind", refErr.Kind, "id", refErr.ID)
		return
	}
	s.logger.Warn("board operation rejected", "op", op, "err", err)
}

// remember records the latest validated move call. Callers hold s.mu.
func (s *Store) remember(intent *moveIntent) {
	if intent == nil {
		return
	}
	s.lastMove = *intent
	s.lastMove.version = s.version
}

// repeated reports whether intent matches the previous move call and nothing
// changed since. Callers hold s.mu.
func (s *Store) repeated(intent moveIntent) bool {
	last := s.lastMove
	return last.version == s.version &&
		last.op == intent.op &&
		last.activeID == intent.activeID &&
		last.overID == intent.overID &&
		last.overKind == intent.overKind
}

// draft is a copy-on-write view of one boardState.
type draft struct {
	next         boardState
	columnsOwned bool
	tasksOwned   bool
	dirty        bool
	intent       *moveIntent
}

// newDraft starts a draft sharing every structure with base.
func newDraft(base *boardState) *draft {
	return &draft{next: *base}
}

func (d *draft) column(id string) (domain.Column, bool) {
	column, ok := d.next.columns[id]
	return column, ok
}

func (d *draft) task(id string) (domain.Task, bool) {
	task, ok := d.next.tasks[id]
	return task, ok
}

// putColumn stores column; its TaskIDs must not alias a published slice that
// was modified in place.
func (d *draft) putColumn(column domain.Column) {
	d.ownColumns()
	d.next.columns[column.ID] = column
	d.dirty = true
}

func (d *draft) removeColumn(id string) {
	d.ownColumns()
	delete(d.next.columns, id)
	d.dirty = true
}

func (d *draft) putTask(task domain.Task) {
	d.ownTasks()
	d.next.tasks[task.ID] = task
	d.dirty = true
}

func (d *draft) removeTask(id string) {
	d.ownTasks()
	delete(d.next.tasks, id)
	d.dirty = true
}

func (d *draft) setColumnOrder(order []string) {
	d.next.columnOrder = order
	d.dirty = true
}

func (d *draft) setActive(columnID, taskID string) {
	if d.next.activeColumn == columnID && d.next.activeTask == taskID {
		return
	}
	d.next.activeColumn = columnID
	d.next.activeTask = taskID
	d.dirty = true
}

func (d *draft) ownColumns() {
	if d.columnsOwned {
		return
	}
	d.next.columns = maps.Clone(d.next.columns)
	d.columnsOwned = true
}

func (d *draft) ownTasks() {
	if d.tasksOwned {
		return
	}
	d.next.tasks = maps.Clone(d.next.tasks)
	d.tasksOwned = true
}

// cloneTask copies the due date so callers cannot reach stored state.
func cloneTask(task domain.Task) domain.Task {
	if task.DueAt != nil {
		due := *task.DueAt
		task.DueAt = &due
	}
	return task
}
