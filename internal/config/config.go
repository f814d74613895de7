package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Template placeholders for default titles.
const (
	PlaceholderColumnNumber = "{n}"
	PlaceholderColumnIndex  = "{column}"
)

type ReplayFormat string

const (
	ReplayFormatText ReplayFormat = "text"
	ReplayFormatJSON ReplayFormat = "json"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Board   BoardConfig   `toml:"board"`
	TUI     TUIConfig     `toml:"tui"`
	Keys    KeyConfig     `toml:"keys"`
	Replay  ReplayConfig  `toml:"replay"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// BoardConfig seeds new boards and names entities the user creates without typing a title.
type BoardConfig struct {
	SeedColumns         []string `toml:"seed_columns"`
	ColumnTitleTemplate string   `toml:"column_title_template"` // {n}
	TaskTitleTemplate   string   `toml:"task_title_template"`   // {column}.{n}
	TaskDescription     string   `toml:"task_description"`
}

type TUIConfig struct {
	ShowDescription bool   `toml:"show_description"`
	ShowDueDate     bool   `toml:"show_due_date"`
	MarkdownStyle   string `toml:"markdown_style"`
	ColumnWidth     int    `toml:"column_width"`
}

type KeyConfig struct {
	Grab      string `toml:"grab"`
	Drop      string `toml:"drop"`
	Cancel    string `toml:"cancel"`
	AddColumn string `toml:"add_column"`
	AddTask   string `toml:"add_task"`
	Edit      string `toml:"edit"`
	Delete    string `toml:"delete"`
	CopyID    string `toml:"copy_id"`
	Details   string `toml:"details"`
}

type ReplayConfig struct {
	Verify bool         `toml:"verify"`
	Format ReplayFormat `toml:"format"`
}

// MinColumnWidth is the narrowest column the board renders.
const MinColumnWidth = 16

var markdownStyles = []string{"auto", "dark", "light", "notty", "ascii", "dracula", "tokyo-night", "pink"}

var logLevels = []string{"debug", "info", "warn", "error", "fatal"}

func Default(logDir string) Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     logDir,
			},
		},
		Board: BoardConfig{
			SeedColumns:         []string{"To Do", "In Progress", "Done"},
			ColumnTitleTemplate: "Column {n}",
			TaskTitleTemplate:   "Task {column}.{n}",
			TaskDescription:     "Task Description",
		},
		TUI: TUIConfig{
			ShowDescription: true,
			ShowDueDate:     true,
			MarkdownStyle:   "dark",
			ColumnWidth:     28,
		},
		Keys: KeyConfig{
			Grab:      "space",
			Drop:      "enter",
			Cancel:    "esc",
			AddColumn: "a",
			AddTask:   "n",
			Edit:      "e",
			Delete:    "d",
			CopyID:    "y",
			Details:   "i",
		},
		Replay: ReplayConfig{
			Verify: true,
			Format: ReplayFormatText,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	cfg.Board.SeedColumns = slices.Clone(defaults.Board.SeedColumns)
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if !slices.Contains(logLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	for idx, title := range c.Board.SeedColumns {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("board.seed_columns[%d] is empty", idx)
		}
	}
	if !strings.Contains(c.Board.ColumnTitleTemplate, PlaceholderColumnNumber) {
		return fmt.Errorf("board.column_title_template must contain %s", PlaceholderColumnNumber)
	}
	if !strings.Contains(c.Board.TaskTitleTemplate, PlaceholderColumnNumber) {
		return fmt.Errorf("board.task_title_template must contain %s", PlaceholderColumnNumber)
	}

	style := strings.TrimSpace(strings.ToLower(c.TUI.MarkdownStyle))
	if style != "" && !slices.Contains(markdownStyles, style) {
		return fmt.Errorf("invalid tui.markdown_style: %q", c.TUI.MarkdownStyle)
	}
	if c.TUI.ColumnWidth < MinColumnWidth {
		return fmt.Errorf("tui.column_width must be >= %d", MinColumnWidth)
	}

	if err := c.Keys.validate(); err != nil {
		return err
	}

	switch c.Replay.Format {
	case ReplayFormatText, ReplayFormatJSON:
	default:
		return fmt.Errorf("invalid replay.format: %q", c.Replay.Format)
	}
	return nil
}

// validate rejects empty or clashing key bindings.
func (k KeyConfig) validate() error {
	bindings := []struct {
		name string
		key  string
	}{
		{"grab", k.Grab},
		{"drop", k.Drop},
		{"cancel", k.Cancel},
		{"add_column", k.AddColumn},
		{"add_task", k.AddTask},
		{"edit", k.Edit},
		{"delete", k.Delete},
		{"copy_id", k.CopyID},
		{"details", k.Details},
	}
	seen := map[string]string{}
	for _, binding := range bindings {
		key := strings.TrimSpace(binding.key)
		if key == "" {
			return fmt.Errorf("keys.%s is required", binding.name)
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", binding.name, prev, key)
		}
		seen[key] = binding.name
	}
	return nil
}

// ColumnTitle renders the default title of the n-th column (1-based).
func (b BoardConfig) ColumnTitle(n int) string {
	return strings.ReplaceAll(b.ColumnTitleTemplate, PlaceholderColumnNumber, strconv.Itoa(n))
}

// TaskTitle renders the default title of the n-th task (1-based) in the
// column at 1-based position column.
func (b BoardConfig) TaskTitle(column, n int) string {
	return strings.NewReplacer(
		PlaceholderColumnIndex, strconv.Itoa(column),
		PlaceholderColumnNumber, strconv.Itoa(n),
	).Replace(b.TaskTitleTemplate)
}

// Save writes cfg as TOML to path, creating parent directories. An existing
// file is kept unless overwrite is set.
func Save(path string, cfg Config, overwrite bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", os.ErrExist, path)
		}
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
