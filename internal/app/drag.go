package app

import (
	"fmt"

	"github.com/hylla/dragboard/internal/domain"
)

// DragStart records the entity picked up by a drag gesture.
func (s *Store) DragStart(ev domain.DragEvent) error {
	return s.update("drag_start", func(d *draft) error {
		switch ev.ActiveKind {
		case domain.KindColumn:
			d.setActive(ev.ActiveID, "")
		case domain.KindTask:
			d.setActive("", ev.ActiveID)
		default:
			return fmt.Errorf("%w: %q", domain.ErrInvalidKind, ev.ActiveKind)
		}
		return nil
	})
}

// DragOver reparents a hovered task live. Column drags only move on drop.
func (s *Store) DragOver(ev domain.DragEvent) error {
	if !ev.HasTarget() || ev.ActiveKind != domain.KindTask {
		return nil
	}
	return s.MoveTask(ev.ActiveID, ev.OverID, ev.OverKind)
}

// DragEnd applies the final move of a gesture, if it has a target, and clears
// the active selection in the same commit whether or not anything moved.
func (s *Store) DragEnd(ev domain.DragEvent) error {
	return s.update("drag_end", func(d *draft) error {
		var err error
		if ev.HasTarget() {
			switch ev.ActiveKind {
			case domain.KindColumn:
				err = s.dropColumn(d, ev)
			case domain.KindTask:
				err = s.moveTask(d, ev.ActiveID, ev.OverID, ev.OverKind)
			default:
				err = fmt.Errorf("%w: %q", domain.ErrInvalidKind, ev.ActiveKind)
			}
		}
		d.setActive("", "")
		return err
	})
}

// dropColumn resolves a column drop; a task under the pointer stands for its column.
func (s *Store) dropColumn(d *draft, ev domain.DragEvent) error {
	overColumnID := ev.OverID
	if ev.OverKind == domain.KindTask {
		over, ok := d.task(ev.OverID)
		if !ok {
			return missingTask("drag_end", ev.OverID)
		}
		overColumnID = over.ColumnID
	}
	return s.moveColumn(d, ev.ActiveID, overColumnID)
}
