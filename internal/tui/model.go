package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/timer"
)

var AppVersion = "0"

// ViewMode is the screen the model shows outside of modals.
type ViewMode int

const (
	ViewHome ViewMode = iota
	ViewFocus
	ViewTransition
	ViewBreak
)

// Options wires the model to storage and the optional services around it.
type Options struct {
	DB             Database
	Syncer         Syncer         // nil disables mirror pushes
	Reload         SnapshotPuller // nil disables reloading on external edits
	MirrorEvents   <-chan struct{}
	Notifier       timer.Notifier
	Clock          timer.Clock
	Logger         *zap.Logger
	Tick           time.Duration
	Transition     time.Duration
	Break          time.Duration
	DefaultMinutes int
	ReportDir      string
}

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	db       Database
	syncer   Syncer
	reload   SnapshotPuller
	events   <-chan struct{}
	notifier timer.Notifier
	clock    timer.Clock
	logger   *zap.Logger

	tick           time.Duration
	transition     time.Duration
	breakLen       time.Duration
	defaultMinutes int
	reportDir      string

	keys   *HandlerRegistry
	modals *ModalManager
	days   *stats.DayDetector

	tasks    []models.Task
	sessions []models.Session // completed within the active filter range
	targets  map[string]models.DailyTarget
	filter   string
	cursor   int

	session *timer.Session
	view    timer.View
	// results collects values handed over by the session's completion
	// callback until Update saves them.
	results *[]timer.Result

	pendingReload    bool
	lastSummaryCheck time.Time

	progress progress.Model
	width    int
	height   int
	err      error
	message  string
}

// New builds the model and loads the initial data.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock
	}
	if opts.Notifier == nil {
		opts.Notifier = timer.NopNotifier{}
	}
	if opts.Tick <= 0 {
		opts.Tick = config.TickInterval
	}
	if opts.Break <= 0 {
		opts.Break = config.BreakDuration
	}
	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = int(config.DefaultWorkDuration / time.Minute)
	}

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = config.ProgressBarWidth

	m := Model{
		ctx:            ctx,
		db:             opts.DB,
		syncer:         opts.Syncer,
		reload:         opts.Reload,
		events:         opts.MirrorEvents,
		notifier:       opts.Notifier,
		clock:          opts.Clock,
		logger:         opts.Logger,
		tick:           opts.Tick,
		transition:     opts.Transition,
		breakLen:       opts.Break,
		defaultMinutes: opts.DefaultMinutes,
		reportDir:      opts.ReportDir,
		keys:           NewHandlerRegistry(),
		modals:         newModalManager(),
		days:           stats.NewDayDetector(opts.Clock.Now()),
		filter:         config.FilterDay,
		results:        &[]timer.Result{},
		progress:       p,
	}
	registerBindings(m.keys)
	m.refreshData()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), waitForMirror(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		target := config.ProgressBarWidth
		if m.width < config.CompactModeThreshold {
			target = m.width / 2
		}
		if target < 10 {
			target = 10
		}
		m.progress.Width = target
		return m, nil

	case TickMsg:
		next, cmd := m.handleTick(msg)
		return next, tea.Batch(cmd, tickCmd(m.tick))

	case mirrorChangedMsg:
		next := m.handleMirrorChanged()
		return next, waitForMirror(m.events)

	case syncDoneMsg:
		return m.handleSyncDone(msg), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.forceQuit()
		}
		if m.err != nil {
			m.err = nil
			return m, nil
		}
		if m.modals.IsOpen() {
			return m.handleModalKey(msg)
		}
		m.message = ""
		next, cmd, _ := m.keys.Handle(m, msg.String())
		return next, cmd
	}
	return m, nil
}

// viewMode derives the screen from the session phase.
func (m Model) viewMode() ViewMode {
	if m.session == nil {
		return ViewHome
	}
	switch m.view.Phase {
	case timer.PhaseRunning, timer.PhasePaused:
		return ViewFocus
	case timer.PhaseCompleted:
		return ViewTransition
	case timer.PhaseBreakRunning, timer.PhaseBreakPaused:
		return ViewBreak
	}
	return ViewHome
}

func (m Model) now() time.Time { return m.clock.Now() }

func (m Model) selectedTask() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// refreshData reloads tasks, sessions of the active filter and targets.
func (m *Model) refreshData() {
	tasks, err := m.db.ListTasks(m.ctx, false)
	if err != nil {
		m.fail("load tasks", err)
		return
	}
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	from, to, err := stats.Range(m.filter, m.now())
	if err != nil {
		m.fail("load sessions", err)
		return
	}
	sessions, err := m.db.SessionsBetween(m.ctx, from, to)
	if err != nil {
		m.fail("load sessions", err)
		return
	}
	m.sessions = sessions

	targets, err := m.db.ListDailyTargets(m.ctx)
	if err != nil {
		m.fail("load targets", err)
		return
	}
	m.targets = targets
}

func (m *Model) fail(action string, err error) {
	m.logger.Error(action, zap.Error(err))
	m.err = fmt.Errorf("%s: %w", action, err)
}

func (m Model) todayTarget() int {
	return m.targets[stats.DateKey(m.now())].TargetMinutes
}

func (m Model) targetMinutes() map[string]int {
	out := make(map[string]int, len(m.targets))
	for date, t := range m.targets {
		out[date] = t.TargetMinutes
	}
	return out
}
