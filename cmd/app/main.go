package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/database"
	"github.com/akyairhashvil/deepwork/internal/mirror"
	"github.com/akyairhashvil/deepwork/internal/notify"
	"github.com/akyairhashvil/deepwork/internal/tui"
	"github.com/akyairhashvil/deepwork/internal/util"
)

const watchDebounce = 300 * time.Millisecond

var errNoTerminal = errors.New("deepwork needs an interactive terminal; run a subcommand instead (see --help)")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dataDir    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Focus timer and time tracker",
		Version:       tui.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNoTerminal
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runTUI(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+filepath.Join(util.ConfigDir(config.AppName), config.ConfigFileName)+")")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory holding the database and logs")

	cmd.AddCommand(
		taskCmd(flags),
		sessionCmd(flags),
		targetCmd(flags),
		statsCmd(flags),
		exportCmd(flags),
		importCmd(flags),
		reportCmd(flags),
		syncCmd(flags),
		serveCmd(flags),
		focusCmd(flags),
		configCmd(flags),
	)
	return cmd
}

// app carries what every command needs once the database is open.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *database.Database
	now    func() time.Time
}

func (f *rootFlags) path() string {
	if f.configPath != "" {
		return f.configPath
	}
	return filepath.Join(util.ConfigDir(config.AppName), config.ConfigFileName)
}

func openApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.path(), util.DataDir(config.AppName))
	if err != nil {
		return nil, err
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.DBPath(), database.WithLogger(logger))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("database opened", zap.String("path", db.Path()))
	return &app{cfg: cfg, logger: logger, db: db, now: time.Now}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		util.LogError(a.logger, "close database", err)
	}
	_ = a.logger.Sync()
}

func (a *app) fileMirror() *mirror.FileMirror {
	path := a.cfg.Mirror.File.Path
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.DataDir, path)
	}
	return mirror.NewFileMirror(path, a.logger)
}

// syncer returns nil when no mirror is configured. A sheet without a token
// is skipped with a warning rather than failing the command.
func (a *app) syncer(ctx context.Context) (*mirror.Syncer, *mirror.FileMirror) {
	var mirrors []mirror.Mirror
	fm := a.fileMirror()
	if fm != nil {
		mirrors = append(mirrors, fm)
	}
	if id := a.cfg.Mirror.Sheets.SpreadsheetID; id != "" {
		token := a.cfg.SheetsToken()
		if token == "" {
			a.logger.Warn("sheets mirror configured without a token", zap.String("env", a.cfg.Mirror.Sheets.TokenEnv))
		} else if sm, err := mirror.NewSheetsMirror(ctx, id, token, a.logger); err != nil {
			util.LogError(a.logger, "sheets mirror", err)
		} else {
			mirrors = append(mirrors, sm)
		}
	}
	if len(mirrors) == 0 {
		return nil, fm
	}
	return mirror.NewSyncer(a.db, a.logger, mirrors...), fm
}

func (a *app) soundEnabled(ctx context.Context) bool {
	v, ok := a.db.GetSetting(ctx, config.SettingSoundEnabled)
	return !ok || v != "false"
}

func (a *app) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tick, err := a.cfg.Tick()
	if err != nil {
		return err
	}
	notifier := notify.NewTerminal(os.Stdout, a.soundEnabled(ctx), true, a.logger)
	defer notifier.Reset()

	opts := tui.Options{
		DB:             a.db,
		Notifier:       notifier,
		Logger:         a.logger,
		Tick:           tick,
		Transition:     config.TransitionDuration,
		Break:          config.BreakDuration,
		DefaultMinutes: a.cfg.DefaultWorkMinutes,
		ReportDir:      util.ReportsDir(config.AppName),
	}
	syncer, fm := a.syncer(ctx)
	if syncer != nil {
		opts.Syncer = syncer
	}
	if fm != nil {
		opts.Reload = fm
		if a.cfg.Mirror.File.Watch {
			w, err := mirror.NewFileWatcher(fm, watchDebounce, a.logger)
			if err != nil {
				util.LogError(a.logger, "watch mirror", err)
			} else if err := w.Start(ctx); err != nil {
				util.LogError(a.logger, "watch mirror", err)
			} else {
				defer w.Stop()
				opts.MirrorEvents = w.Events()
			}
		}
	}

	p := tea.NewProgram(tui.New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
