package tui

import (
	"fmt"
	"strconv"
)

type KeyConfig struct {
	Grab      string
	Drop      string
	Cancel    string
	AddColumn string
	AddTask   string
	Edit      string
	Delete    string
	CopyID    string
	Details   string
}

type DisplayConfig struct {
	ShowDescription bool
	ShowDueDate     bool
	ColumnWidth     int
	MarkdownStyle   string
}

// Defaults names entities created from the board without typed titles.
type Defaults struct {
	ColumnTitle     func(n int) string
	TaskTitle       func(column, n int) string
	TaskDescription string
}

type Option func(*Model)

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		ShowDescription: true,
		ShowDueDate:     true,
		ColumnWidth:     28,
		MarkdownStyle:   "dark",
	}
}

func DefaultDefaults() Defaults {
	return Defaults{
		ColumnTitle: func(n int) string {
			return "Column " + strconv.Itoa(n)
		},
		TaskTitle: func(column, n int) string {
			return fmt.Sprintf("Task %d.%d", column, n)
		},
		TaskDescription: "Task Description",
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithDisplayConfig(cfg DisplayConfig) Option {
	return func(m *Model) {
		if cfg.ColumnWidth <= 0 {
			cfg.ColumnWidth = m.display.ColumnWidth
		}
		m.display = cfg
		m.markdown.style = cfg.MarkdownStyle
	}
}

func WithDefaults(d Defaults) Option {
	return func(m *Model) {
		if d.ColumnTitle != nil {
			m.defaults.ColumnTitle = d.ColumnTitle
		}
		if d.TaskTitle != nil {
			m.defaults.TaskTitle = d.TaskTitle
		}
		m.defaults.TaskDescription = d.TaskDescription
	}
}

// WithIDGenerator replaces uuid.NewString for new columns and tasks.
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}
