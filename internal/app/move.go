package app

import (
	"fmt"
	"slices"

	"github.com/hylla/dragboard/internal/domain"
)

// MoveColumn moves activeColumnID to the position currently held by overColumnID.
func (s *Store) MoveColumn(activeColumnID, overColumnID string) error {
	return s.update("move_column", func(d *draft) error {
		return s.moveColumn(d, activeColumnID, overColumnID)
	})
}

// MoveTask reorders or reparents activeTaskID relative to the entity under the
// pointer. It is safe to call on every drag-over event: a call identical to the
// previous move call is a no-op while the board is unchanged. Any other move
// call in between, including one that changes nothing, ends the repetition.
func (s *Store) MoveTask(activeTaskID, overID string, overKind domain.ItemKind) error {
	return s.update("move_task", func(d *draft) error {
		return s.moveTask(d, activeTaskID, overID, overKind)
	})
}

func (s *Store) moveColumn(d *draft, activeColumnID, overColumnID string) error {
	order := d.next.columnOrder
	from := slices.Index(order, activeColumnID)
	if from < 0 {
		return missingColumn("move_column", activeColumnID)
	}
	to := slices.Index(order, overColumnID)
	if to < 0 {
		return missingColumn("move_column", overColumnID)
	}
	intent := moveIntent{op: "move_column", activeID: activeColumnID, overID: overColumnID, overKind: domain.KindColumn}
	if from == to || s.repeated(intent) {
		d.intent = &intent
		return nil
	}
	d.setColumnOrder(listMove(order, from, to))
	d.intent = &intent
	return nil
}

func (s *Store) moveTask(d *draft, activeTaskID, overID string, overKind domain.ItemKind) error {
	active, ok := d.task(activeTaskID)
	if !ok {
		return missingTask("move_task", activeTaskID)
	}
	source, ok := d.column(active.ColumnID)
	if !ok {
		return missingColumn("move_task", active.ColumnID)
	}
	sourceIndex := source.IndexOf(activeTaskID)
	if sourceIndex < 0 {
		return missingTask("move_task", activeTaskID)
	}

	intent := moveIntent{op: "move_task", activeID: activeTaskID, overID: overID, overKind: overKind}
	switch overKind {
	case domain.KindColumn:
		target, ok := d.column(overID)
		if !ok {
			return missingColumn("move_task", overID)
		}
		d.intent = &intent
		if target.ID == source.ID || s.repeated(intent) {
			return nil
		}
		d.reparent(active, source, sourceIndex, target, 0)

	case domain.KindTask:
		if overID == activeTaskID {
			d.intent = &intent
			return nil
		}
		over, ok := d.task(overID)
		if !ok {
			return missingTask("move_task", overID)
		}
		target, ok := d.column(over.ColumnID)
		if !ok {
			return missingColumn("move_task", over.ColumnID)
		}
		targetIndex := target.IndexOf(overID)
		if targetIndex < 0 {
			return missingTask("move_task", overID)
		}
		d.intent = &intent
		if s.repeated(intent) {
			return nil
		}
		if target.ID == source.ID {
			source.TaskIDs = listMove(source.TaskIDs, sourceIndex, targetIndex)
			d.putColumn(source)
		} else {
			d.reparent(active, source, sourceIndex, target, targetIndex)
		}

	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, overKind)
	}
	return nil
}

// reparent moves task from source[sourceIndex] into target at targetIndex.
func (d *draft) reparent(task domain.Task, source domain.Column, sourceIndex int, target domain.Column, targetIndex int) {
	source.TaskIDs = removeAt(source.TaskIDs, sourceIndex)
	target.TaskIDs = insertAt(target.TaskIDs, targetIndex, task.ID)
	task.ColumnID = target.ID
	d.putColumn(source)
	d.putColumn(target)
	d.putTask(task)
}

// listMove returns a copy of ids with the element at from reinserted at to,
// shifting the elements in between.
func listMove(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	return slices.Insert(out, to, ids[from])
}

// removeAt returns a copy of ids without the element at idx.
func removeAt(ids []string, idx int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:idx]...)
	return append(out, ids[idx+1:]...)
}

// insertAt returns a copy of ids with id inserted at idx.
func insertAt(ids []string, idx int, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:idx]...)
	out = append(out, id)
	return append(out, ids[idx:]...)
}

// removeID returns a copy of ids without any occurrence of id.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
