package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"

	charmLog "github.com/charmbracelet/log"
)

// checkInvariants verifies a snapshot after each step when verification is on.
var checkInvariants = app.CheckInvariants

// Board is the store surface a script drives. *app.Store satisfies it.
type Board interface {
	Snapshot() app.Snapshot
	AddColumn(domain.Column) error
	RenameColumn(columnID, title string) error
	DeleteColumn(columnID string) error
	AddTask(domain.Task) error
	UpdateTask(taskID, title, description string, dueAt *time.Time) error
	DeleteTask(taskID, columnID string) error
	MoveColumn(activeColumnID, overColumnID string) error
	MoveTask(activeTaskID, overID string, overKind domain.ItemKind) error
	SetActiveColumnID(id string)
	SetActiveTaskID(id string)
	DragStart(domain.DragEvent) error
	DragOver(domain.DragEvent) error
	DragEnd(domain.DragEvent) error
}

// StepStatus classifies the outcome of one step.
type StepStatus string

// StepStatus values.
const (
	StatusOK         StepStatus = "ok"
	StatusDiagnostic StepStatus = "diagnostic"
	StatusFailed     StepStatus = "failed"
)

// StepResult records one replayed step.
type StepResult struct {
	Index   int        `json:"index"`
	Op      Op         `json:"op"`
	Status  StepStatus `json:"status"`
	Detail  string     `json:"detail,omitempty"`
	Version uint64     `json:"version"`
}

// Report summarizes one replay.
type Report struct {
	Script      string       `json:"script"`
	Steps       []StepResult `json:"steps"`
	Diagnostics int          `json:"diagnostics"`
	Failures    int          `json:"failures"`
	Aborted     bool         `json:"aborted,omitempty"`
	Final       app.Snapshot `json:"-"`
}

// Passed reports whether every expectation held and no step failed.
func (r Report) Passed() bool {
	return r.Failures == 0 && !r.Aborted
}

// RunOptions configures one replay.
type RunOptions struct {
	// Verify checks board invariants after every step.
	Verify bool
	Logger app.Logger
}

// Run replays s against b. Reference misses are diagnostics; other step errors
// and failed expectations are failures. An invariant violation aborts the run
// and is returned alongside the partial report.
func Run(ctx context.Context, b Board, s Script, opts RunOptions) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	report := Report{Script: s.Name, Steps: make([]StepResult, 0, len(s.Steps))}
	for idx, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			report.Final = b.Snapshot()
			return report, err
		}

		result := StepResult{Index: idx + 1, Op: step.Op, Status: StatusOK}
		err := apply(b, step)
		switch {
		case err == nil:
		case errors.Is(err, app.ErrReferenceNotFound):
			result.Status = StatusDiagnostic
			result.Detail = err.Error()
			report.Diagnostics++
		default:
			result.Status = StatusFailed
			result.Detail = err.Error()
			report.Failures++
			logger.Warn("script step failed", "step", result.Index, "op", step.Op, "err", err)
		}

		snap := b.Snapshot()
		result.Version = snap.Version()
		report.Steps = append(report.Steps, result)
		if opts.Verify {
			if err := checkInvariants(snap); err != nil {
				report.Aborted = true
				report.Final = snap
				logger.Warn("script aborted", "step", result.Index, "op", step.Op, "err", err)
				return report, fmt.Errorf("step %d (%s): %w", result.Index, step.Op, err)
			}
		}
	}
	report.Final = b.Snapshot()
	logger.Debug("script replayed", "script", s.Name, "steps", len(report.Steps), "diagnostics", report.Diagnostics, "failures", report.Failures)
	return report, nil
}

// apply runs one validated step.
func apply(b Board, st Step) error {
	switch st.Op {
	case OpAddColumn:
		column, err := domain.NewColumn(st.ID, st.Title)
		if err != nil {
			return err
		}
		return b.AddColumn(column)
	case OpRenameColumn:
		return b.RenameColumn(st.ID, st.Title)
	case OpDeleteColumn:
		return b.DeleteColumn(st.ID)
	case OpAddTask:
		task, err := domain.NewTask(domain.TaskInput{
			ID:          st.ID,
			ColumnID:    st.Column,
			Title:       st.Title,
			Description: st.Description,
			DueAt:       st.dueAt,
		})
		if err != nil {
			return err
		}
		return b.AddTask(task)
	case OpUpdateTask:
		return b.UpdateTask(st.ID, st.Title, st.Description, st.dueAt)
	case OpDeleteTask:
		return b.DeleteTask(st.ID, st.Column)
	case OpMoveColumn:
		return b.MoveColumn(st.Active, st.Over)
	case OpMoveTask:
		return b.MoveTask(st.Active, st.Over, st.overKind)
	case OpSetActive:
		if st.activeKind == domain.KindColumn {
			b.SetActiveColumnID(st.Active)
		} else {
			b.SetActiveTaskID(st.Active)
		}
		return nil
	case OpDragStart:
		return b.DragStart(st.dragEvent())
	case OpDragOver:
		return b.DragOver(st.dragEvent())
	case OpDragEnd:
		return b.DragEnd(st.dragEvent())
	case OpExpect:
		return expect(b.Snapshot(), st)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
}

// expect compares the board against every check named by st.
func expect(snap app.Snapshot, st Step) error {
	var errs []error
	mismatch := func(what string, got, want any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v, want %v", ErrExpectation, what, got, want))
	}

	if st.Order != nil {
		if got := snap.ColumnOrder(); !slices.Equal(got, st.Order) {
			mismatch("column order", formatIDs(got), formatIDs(st.Order))
		}
	}
	switch {
	case st.Task != "":
		task, ok := snap.Task(st.Task)
		if !ok {
			mismatch("task "+st.Task, "missing", "present")
		} else if st.Column != "" && task.ColumnID != st.Column {
			mismatch("task "+st.Task+" column", task.ColumnID, st.Column)
		}
	case st.Column != "":
		column, ok := snap.Column(st.Column)
		if !ok {
			mismatch("column "+st.Column, "missing", "present")
		} else if want := st.Tasks; !slices.Equal(column.TaskIDs, want) && len(column.TaskIDs)+len(want) > 0 {
			mismatch("column "+st.Column+" tasks", formatIDs(column.TaskIDs), formatIDs(want))
		}
	}
	if st.ActiveColumn != nil && snap.ActiveColumnID() != *st.ActiveColumn {
		mismatch("active column", quoted(snap.ActiveColumnID()), quoted(*st.ActiveColumn))
	}
	if st.ActiveTask != nil && snap.ActiveTaskID() != *st.ActiveTask {
		mismatch("active task", quoted(snap.ActiveTaskID()), quoted(*st.ActiveTask))
	}
	if st.TaskCount != nil && snap.TaskCount() != *st.TaskCount {
		mismatch("task count", snap.TaskCount(), *st.TaskCount)
	}
	return errors.Join(errs...)
}

func formatIDs(ids []string) string {
	return "[" + strings.Join(ids, ",") + "]"
}

func quoted(s string) string {
	return fmt.Sprintf("%q", s)
}
