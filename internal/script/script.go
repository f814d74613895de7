// Package script loads board scripts and replays them against a store.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/dragboard/internal/domain"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a script encoding.
type Format string

// Format values.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Op names one step kind.
type Op string

// Op values.
const (
	OpAddColumn    Op = "add_column"
	OpRenameColumn Op = "rename_column"
	OpDeleteColumn Op = "delete_column"
	OpAddTask      Op = "add_task"
	OpUpdateTask   Op = "update_task"
	OpDeleteTask   Op = "delete_task"
	OpMoveColumn   Op = "move_column"
	OpMoveTask     Op = "move_task"
	OpSetActive    Op = "set_active"
	OpDragStart    Op = "drag_start"
	OpDragOver     Op = "drag_over"
	OpDragEnd      Op = "drag_end"
	OpExpect       Op = "expect"
)

// dueDateLayout is the short date form accepted for due fields.
const dueDateLayout = "2006-01-02"

// Script is one ordered list of board steps.
type Script struct {
	Name  string `toml:"name,omitempty" yaml:"name,omitempty"`
	Steps []Step `toml:"steps" yaml:"steps"`
}

// Step is one board operation or expectation. Which fields apply depends on Op.
type Step struct {
	Op          Op     `toml:"op" yaml:"op"`
	ID          string `toml:"id,omitempty" yaml:"id,omitempty"`
	Title       string `toml:"title,omitempty" yaml:"title,omitempty"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`
	Due         string `toml:"due,omitempty" yaml:"due,omitempty"`
	Column      string `toml:"column,omitempty" yaml:"column,omitempty"`
	Active      string `toml:"active,omitempty" yaml:"active,omitempty"`
	ActiveKind  string `toml:"active_kind,omitempty" yaml:"active_kind,omitempty"`
	Over        string `toml:"over,omitempty" yaml:"over,omitempty"`
	OverKind    string `toml:"over_kind,omitempty" yaml:"over_kind,omitempty"`

	Order        []string `toml:"order,omitempty" yaml:"order,omitempty"`
	Tasks        []string `toml:"tasks,omitempty" yaml:"tasks,omitempty"`
	Task         string   `toml:"task,omitempty" yaml:"task,omitempty"`
	ActiveColumn *string  `toml:"active_column,omitempty" yaml:"active_column,omitempty"`
	ActiveTask   *string  `toml:"active_task,omitempty" yaml:"active_task,omitempty"`
	TaskCount    *int     `toml:"task_count,omitempty" yaml:"task_count,omitempty"`

	dueAt      *time.Time
	activeKind domain.ItemKind
	overKind   domain.ItemKind
}

// FormatFor picks the script format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and validates the script at path.
func Load(path string) (Script, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Script{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script %q: %w", path, err)
	}
	s, err := Parse(content, format)
	if err != nil {
		return Script{}, fmt.Errorf("parse script %q: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(content []byte, format Format) (Script, error) {
	var s Script
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Script{}, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Script{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Script{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks every step and resolves due dates and kinds.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	for idx := range s.Steps {
		if err := s.Steps[idx].validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", idx+1, s.Steps[idx].Op, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	st.Op = Op(strings.ToLower(strings.TrimSpace(string(st.Op))))
	require := func(name, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidStep, name)
		}
		return nil
	}

	var err error
	switch st.Op {
	case OpAddColumn, OpRenameColumn, OpDeleteColumn:
		err = require("id", st.ID)
	case OpAddTask:
		err = errors.Join(require("id", st.ID), require("column", st.Column), st.parseDue())
	case OpUpdateTask:
		err = errors.Join(require("id", st.ID), st.parseDue())
	case OpDeleteTask:
		err = require("id", st.ID)
	case OpMoveColumn:
		err = errors.Join(require("active", st.Active), require("over", st.Over))
	case OpMoveTask:
		err = errors.Join(require("active", st.Active), require("over", st.Over), st.parseOverKind(true))
	case OpSetActive:
		err = st.parseActiveKind()
	case OpDragStart:
		err = errors.Join(require("active", st.Active), st.parseActiveKind())
	case OpDragOver, OpDragEnd:
		err = errors.Join(require("active", st.Active), st.parseActiveKind(), st.parseOverKind(st.Over != ""))
	case OpExpect:
		err = st.validateExpect()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	return err
}

func (st *Step) validateExpect() error {
	checks := 0
	if st.Order != nil {
		checks++
	}
	if st.Column != "" || st.Task != "" {
		checks++
	}
	if st.ActiveColumn != nil {
		checks++
	}
	if st.ActiveTask != nil {
		checks++
	}
	if st.TaskCount != nil {
		checks++
	}
	if checks == 0 {
		return fmt.Errorf("%w: expect needs order, column, task, active_column, active_task, or task_count", ErrInvalidStep)
	}
	return nil
}

func (st *Step) parseDue() error {
	raw := strings.TrimSpace(st.Due)
	if raw == "" {
		st.dueAt = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339, dueDateLayout} {
		if ts, err := time.Parse(layout, raw); err == nil {
			st.dueAt = &ts
			return nil
		}
	}
	return fmt.Errorf("%w: due %q must be RFC3339 or YYYY-MM-DD", ErrInvalidStep, raw)
}

func (st *Step) parseActiveKind() error {
	kind, err := domain.ParseItemKind(st.ActiveKind)
	if err != nil {
		return fmt.Errorf("%w: active_kind %q: %w", ErrInvalidStep, st.ActiveKind, err)
	}
	st.activeKind = kind
	return nil
}

func (st *Step) parseOverKind(required bool) error {
	if !required && strings.TrimSpace(st.OverKind) == "" {
		return nil
	}
	kind, err := domain.ParseItemKind(st.OverKind)
	if err != nil {
		return fmt.Errorf("%w: over_kind %q: %w", ErrInvalidStep, st.OverKind, err)
	}
	st.overKind = kind
	return nil
}

// dragEvent builds the drag event a drag step carries.
func (st Step) dragEvent() domain.DragEvent {
	return domain.DragEvent{
		ActiveID:   st.Active,
		ActiveKind: st.activeKind,
		OverID:     st.Over,
		OverKind:   st.overKind,
	}
}
