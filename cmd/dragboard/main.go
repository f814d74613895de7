package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/config"
	"github.com/hylla/dragboard/internal/domain"
	"github.com/hylla/dragboard/internal/platform"
	"github.com/hylla/dragboard/internal/script"
	"github.com/hylla/dragboard/internal/tui"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// errReplayFailed marks a replay whose expectations did not hold.
var errReplayFailed = errors.New("replay failed")

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it against args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	appName    string
	devMode    bool
}

// runtimeEnv is the resolved paths and configuration for one invocation.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	defaults   config.Config
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	var seedScript string

	root := &cobra.Command{
		Use:   "dragboard",
		Short: "A drag-and-drop board in the terminal",
		Long: `dragboard edits a board of ordered columns and tasks with keyboard drag gestures.

Grab a task or column with space, move it with the arrow keys, drop it with
enter or cancel with esc.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts, seedScript, cmd.ErrOrStderr())
		},
	}

	appName := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("DRAGBOARD_APP_NAME")); envApp != "" {
		appName = envApp
	}
	devMode := version == "dev"
	if envDev, ok := parseBoolEnv("DRAGBOARD_DEV_MODE"); ok {
		devMode = envDev
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (DRAGBOARD_CONFIG)")
	flags.StringVar(&opts.appName, "app", appName, "application name for config/log path resolution")
	flags.BoolVar(&opts.devMode, "dev", devMode, "use dev mode paths (<app>-dev) and the dev log file")
	root.Flags().StringVar(&seedScript, "seed", "", "replay a board script onto the new board instead of the configured seed columns")

	root.AddCommand(newReplayCommand(opts), newPathsCommand(opts), newConfigCommand(opts))
	return root
}

// resolve loads paths and configuration for opts.
func (o *globalOptions) resolve() (runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return runtimeEnv{}, err
	}

	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("DRAGBOARD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	defaults := config.Default(paths.LogDir)
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return runtimeEnv{paths: paths, configPath: configPath, defaults: defaults, cfg: cfg}, nil
}

// runBoard launches the TUI on a fresh in-memory board.
func runBoard(ctx context.Context, opts *globalOptions, seedScript string, stderr io.Writer) error {
	env, err := opts.resolve()
	if err != nil {
		return err
	}
	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, env.cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.ConsoleEnabled() {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", "tui")
	logger.Debug("runtime paths resolved", "config_path", env.configPath, "data_dir", env.paths.DataDir, "log_dir", env.paths.LogDir)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store := app.NewStore(app.WithLogger(logger))
	if seedScript != "" {
		if err := replayOnto(ctx, store, seedScript, env.cfg.Replay.Verify, logger); err != nil {
			return fmt.Errorf("seed board: %w", err)
		}
	} else if err := seedBoard(store, env.cfg.Board, uuid.NewString); err != nil {
		return fmt.Errorf("seed board: %w", err)
	}
	snap := store.Snapshot()
	logger.Info("board ready", "columns", snap.ColumnCount(), "tasks", snap.TaskCount())

	m := tui.NewModel(
		store,
		tui.WithKeyConfig(toTUIKeys(env.cfg.Keys)),
		tui.WithDisplayConfig(tui.DisplayConfig{
			ShowDescription: env.cfg.TUI.ShowDescription,
			ShowDueDate:     env.cfg.TUI.ShowDueDate,
			ColumnWidth:     env.cfg.TUI.ColumnWidth,
			MarkdownStyle:   env.cfg.TUI.MarkdownStyle,
		}),
		tui.WithDefaults(tui.Defaults{
			ColumnTitle:     env.cfg.Board.ColumnTitle,
			TaskTitle:       env.cfg.Board.TaskTitle,
			TaskDescription: env.cfg.Board.TaskDescription,
		}),
	)

	p := programFactory(m)
	// Send blocks until the event loop receives, and the store notifies from
	// inside Update, so delivery runs on its own goroutine.
	unsubscribe := store.Subscribe(func(snap app.Snapshot) {
		go p.Send(tui.BoardChanged(snap))
	})
	defer unsubscribe()

	logger.SetConsoleEnabled(false)
	logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// seedBoard adds one column per configured title.
func seedBoard(store *app.Store, board config.BoardConfig, newID func() string) error {
	for _, title := range board.SeedColumns {
		column, err := domain.NewColumn(newID(), title)
		if err != nil {
			return err
		}
		if err := store.AddColumn(column); err != nil {
			return err
		}
	}
	return nil
}

// replayOnto runs the script at path against store and rejects failed runs.
func replayOnto(ctx context.Context, store *app.Store, path string, verify bool, logger app.Logger) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	report, err := script.Run(ctx, store, s, script.RunOptions{Verify: verify, Logger: logger})
	if err != nil {
		return err
	}
	if !report.Passed() {
		return fmt.Errorf("%w: %d of %d steps failed", errReplayFailed, report.Failures, len(report.Steps))
	}
	return nil
}

func newReplayCommand(opts *globalOptions) *cobra.Command {
	var (
		format   string
		watch    bool
		noVerify bool
	)
	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a board script and print the result",
		Long: `Replay a TOML or YAML board script against an empty board.

Examples:
  # Step table and final board
  dragboard replay session.toml

  # JSON report for tooling
  dragboard replay session.yaml --format json

  # Re-run whenever the script is saved
  dragboard replay session.toml --watch
`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.resolve()
			if err != nil {
				return err
			}
			logger, err := newRuntimeLogger(cmd.ErrOrStderr(), opts.appName, opts.devMode, env.cfg.Logging, time.Now)
			if err != nil {
				return fmt.Errorf("configure runtime logger: %w", err)
			}
			defer func() { _ = logger.Close() }()

			outFormat := env.cfg.Replay.Format
			if cmd.Flags().Changed("format") {
				outFormat = config.ReplayFormat(strings.ToLower(strings.TrimSpace(format)))
			}
			if outFormat != config.ReplayFormatText && outFormat != config.ReplayFormatJSON {
				return fmt.Errorf("invalid --format %q: want text or json", format)
			}
			verify := env.cfg.Replay.Verify && !noVerify

			path := args[0]
			replay := func() error {
				return replayAndRender(cmd.Context(), path, outFormat, verify, cmd.OutOrStdout(), logger)
			}
			if !watch {
				return replay()
			}

			if err := replay(); err != nil {
				logger.Warn("replay failed", "script", path, "err", err)
			}
			logger.Info("watching script", "script", path)
			return script.Watch(cmd.Context(), path, script.DefaultDebounce, func() {
				if err := replay(); err != nil {
					logger.Warn("replay failed", "script", path, "err", err)
				}
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.ReplayFormatText), "output format: text or json")
	cmd.Flags().BoolVar(&watch, "watch", false, "replay again whenever the script changes")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip the board invariant check after each step")
	return cmd
}

// replayAndRender replays one script on a fresh store and writes its report.
func replayAndRender(ctx context.Context, path string, format config.ReplayFormat, verify bool, out io.Writer, logger app.Logger) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	store := app.NewStore(app.WithLogger(logger))
	report, runErr := script.Run(ctx, store, s, script.RunOptions{Verify: verify, Logger: logger})

	render := script.RenderText
	if format == config.ReplayFormatJSON {
		render = script.RenderJSON
	}
	if err := render(out, report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("replay %q: %w", path, runErr)
	}
	if !report.Passed() {
		return fmt.Errorf("%w: %s", errReplayFailed, path)
	}
	return nil
}

func newPathsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", env.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", env.paths.DataDir)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", env.cfg.Logging.DevFile.Dir)
			return nil
		},
	}
}

func newConfigCommand(opts *globalOptions) *cobra.Command {
	var (
		write bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

With --write the defaults are saved to the config path so they can be edited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.resolve()
			if err != nil {
				return err
			}
			if write {
				if err := config.Save(env.configPath, env.defaults, force); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", env.configPath)
				return nil
			}
			content, err := toml.Marshal(env.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "save the default configuration to the config path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file with --write")
	return cmd
}

// toTUIKeys maps configured key bindings onto the board model.
func toTUIKeys(keys config.KeyConfig) tui.KeyConfig {
	return tui.KeyConfig{
		Grab:      keys.Grab,
		Drop:      keys.Drop,
		Cancel:    keys.Cancel,
		AddColumn: keys.AddColumn,
		AddTask:   keys.AddTask,
		Edit:      keys.Edit,
		Delete:    keys.Delete,
		CopyID:    keys.CopyID,
		Details:   keys.Details,
	}
}

// parseBoolEnv reads a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
