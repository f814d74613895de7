package app

import (
	"errors"
	"fmt"
	"slices"
)

// CheckInvariants verifies the structural consistency of a snapshot and
// returns every violation joined into one error wrapping ErrInvariantViolation.
func CheckInvariants(s Snapshot) error {
	var errs []error
	violate := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...)))
	}

	columns := s.Columns()
	tasks := s.Tasks()
	order := s.ColumnOrder()

	seenColumns := map[string]struct{}{}
	for _, id := range order {
		if _, dup := seenColumns[id]; dup {
			violate("column %q appears twice in column order", id)
			continue
		}
		seenColumns[id] = struct{}{}
		if _, ok := columns[id]; !ok {
			violate("column order lists unknown column %q", id)
		}
	}
	for _, id := range sortedKeys(columns) {
		if _, ok := seenColumns[id]; !ok {
			violate("column %q missing from column order", id)
		}
	}

	owner := map[string]string{}
	for _, columnID := range sortedKeys(columns) {
		column := columns[columnID]
		if column.ID != columnID {
			violate("column keyed %q carries id %q", columnID, column.ID)
		}
		for _, taskID := range column.TaskIDs {
			if prev, dup := owner[taskID]; dup {
				violate("task %q listed by column %q and %q", taskID, prev, columnID)
				continue
			}
			owner[taskID] = columnID
			task, ok := tasks[taskID]
			if !ok {
				violate("column %q lists unknown task %q", columnID, taskID)
				continue
			}
			if task.ColumnID != columnID {
				violate("task %q points at column %q but is listed by %q", taskID, task.ColumnID, columnID)
			}
		}
	}
	for _, taskID := range sortedKeys(tasks) {
		if _, ok := owner[taskID]; !ok {
			violate("task %q is not listed by any column", taskID)
		}
	}

	if id := s.ActiveColumnID(); id != "" {
		if _, ok := columns[id]; !ok {
			violate("active column %q does not exist", id)
		}
	}
	if id := s.ActiveTaskID(); id != "" {
		if _, ok := tasks[id]; !ok {
			violate("active task %q does not exist", id)
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
