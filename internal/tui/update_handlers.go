package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/mirror"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/timer"
	"github.com/akyairhashvil/deepwork/internal/util"
)

var filterOrder = []string{config.FilterDay, config.FilterWeek, config.FilterMonth}

func registerBindings(r *HandlerRegistry) {
	home := []ViewMode{ViewHome}
	focus := []ViewMode{ViewFocus}
	breakish := []ViewMode{ViewTransition, ViewBreak}

	r.Register(KeyBinding{Key: "up", Handler: handleCursorUp, Description: "up", ViewModes: home})
	r.Register(KeyBinding{Key: "k", Handler: handleCursorUp, ViewModes: home})
	r.Register(KeyBinding{Key: "down", Handler: handleCursorDown, Description: "down", ViewModes: home})
	r.Register(KeyBinding{Key: "j", Handler: handleCursorDown, ViewModes: home})
	r.Register(KeyBinding{Key: "enter", Handler: handleOpenStart, Description: "start", ViewModes: home})
	r.Register(KeyBinding{Key: "a", Handler: handleOpenAddTask, Description: "add", ViewModes: home})
	r.Register(KeyBinding{Key: "e", Handler: handleOpenEditTask, Description: "edit", ViewModes: home})
	r.Register(KeyBinding{Key: "x", Handler: handleConfirmArchive, Description: "archive", ViewModes: home})
	r.Register(KeyBinding{Key: "d", Handler: handleConfirmDelete, Description: "delete", ViewModes: home})
	r.Register(KeyBinding{Key: "A", Handler: handleOpenArchived, Description: "archived", ViewModes: home})
	r.Register(KeyBinding{Key: "t", Handler: handleOpenTarget, Description: "target", ViewModes: home})
	r.Register(KeyBinding{Key: "m", Handler: handleOpenManual, Description: "log time", ViewModes: home})
	r.Register(KeyBinding{Key: "f", Handler: handleCycleFilter, Description: "filter", ViewModes: home})
	r.Register(KeyBinding{Key: "D", Handler: handleOpenSummary, Description: "summary", ViewModes: home})
	r.Register(KeyBinding{Key: "P", Handler: handleExportReport, Description: "pdf", ViewModes: home})
	r.Register(KeyBinding{Key: "s", Handler: handleSyncNow, Description: "sync", ViewModes: home})
	r.Register(KeyBinding{Key: "r", Handler: handleRefresh, Description: "refresh", ViewModes: home})

	r.Register(KeyBinding{Key: " ", Handler: handleTogglePause, Description: "pause", ViewModes: focus})
	r.Register(KeyBinding{Key: "p", Handler: handleTogglePause, ViewModes: focus})
	r.Register(KeyBinding{Key: "s", Handler: handleSkip, Description: "skip", ViewModes: focus})
	r.Register(KeyBinding{Key: "f", Handler: handleFinish, Description: "finish", ViewModes: focus})
	r.Register(KeyBinding{Key: "x", Handler: handleConfirmStop, Description: "stop", ViewModes: focus})

	r.Register(KeyBinding{Key: " ", Handler: handleTogglePause, Description: "pause", ViewModes: []ViewMode{ViewBreak}})
	r.Register(KeyBinding{Key: "b", Handler: handleSkipBreak, Description: "skip break", ViewModes: breakish})

	r.Register(KeyBinding{Key: "q", Handler: handleQuit, Description: "quit"})
}

func handleCursorUp(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.cursor > 0 {
		m.cursor--
	}
	return m, nil, true
}

func handleCursorDown(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.cursor < len(m.tasks)-1 {
		m.cursor++
	}
	return m, nil, true
}

func handleCycleFilter(m Model, _ string) (Model, tea.Cmd, bool) {
	next := 0
	for i, f := range filterOrder {
		if f == m.filter {
			next = (i + 1) % len(filterOrder)
		}
	}
	m.filter = filterOrder[next]
	m.refreshData()
	return m, nil, true
}

func handleRefresh(m Model, _ string) (Model, tea.Cmd, bool) {
	m.refreshData()
	return m, nil, true
}

func handleSyncNow(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.syncer == nil {
		m.message = "No mirrors configured"
		return m, nil, true
	}
	m.message = "Syncing..."
	return m, syncCmd(m.ctx, m.syncer), true
}

func handleQuit(m Model, _ string) (Model, tea.Cmd, bool) {
	switch m.viewMode() {
	case ViewFocus:
		m.modals.Open(&ConfirmState{Action: ConfirmQuit, Prompt: "Quit and discard the running session?"})
		return m, nil, true
	case ViewTransition, ViewBreak:
		// The work is already captured; ending the break saves it.
		next, cmd := m.endBreak()
		return next, quitAfter(cmd), true
	}
	return m, tea.Quit, true
}

func quitAfter(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return tea.Quit
	}
	return tea.Sequence(cmd, tea.Quit)
}

// forceQuit handles ctrl+c: captured work is saved, an unfinished work phase
// is dropped.
func (m Model) forceQuit() (tea.Model, tea.Cmd) {
	switch m.viewMode() {
	case ViewTransition, ViewBreak:
		next, cmd := m.endBreak()
		return next, quitAfter(cmd)
	case ViewFocus:
		if err := m.session.StopWithoutSaving(); err != nil {
			m.logger.Warn("stop on quit", zap.Error(err))
		}
	}
	return m, tea.Quit
}

// startSession begins a focus session on task. minutes == 0 runs untimed.
func (m Model) startSession(taskID int64, name string, minutes int) (Model, tea.Cmd) {
	box := m.results
	s := timer.New(timer.Task{ID: taskID, Name: name},
		timer.WithClock(m.clock),
		timer.WithNotifier(m.notifier),
		timer.WithTransition(m.transition),
		timer.WithBreak(m.breakLen),
		timer.OnComplete(func(r timer.Result) { *box = append(*box, r) }),
	)
	if err := s.Start(minutes * 60); err != nil {
		m.fail("start session", err)
		return m, nil
	}
	m.session = s
	m.view = s.View()
	m.logger.Info("session started", zap.Int64("task_id", taskID), zap.Int("minutes", minutes))
	return m, nil
}

func handleTogglePause(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.session == nil {
		return m, nil, false
	}
	if err := m.session.TogglePause(); err != nil {
		m.message = err.Error()
	}
	next, cmd := m.afterSessionOp()
	return next, cmd, true
}

func handleSkip(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.session == nil {
		return m, nil, false
	}
	err := m.session.SkipWithProgress()
	switch {
	case errors.Is(err, timer.ErrSkipNotAllowed):
		m.message = fmt.Sprintf("Skip unlocks at %d%%", int(config.SkipThreshold*100))
	case errors.Is(err, timer.ErrInvalidTransition) && m.view.Mode == timer.ModeCountUp:
		m.message = "Untimed sessions end with finish"
	}
	next, cmd := m.afterSessionOp()
	return next, cmd, true
}

func handleFinish(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.session == nil {
		return m, nil, false
	}
	if err := m.session.Finish(); err != nil {
		m.message = "Timed sessions end on their own or with skip"
	}
	next, cmd := m.afterSessionOp()
	return next, cmd, true
}

func handleSkipBreak(m Model, _ string) (Model, tea.Cmd, bool) {
	next, cmd := m.endBreak()
	return next, cmd, true
}

func (m Model) endBreak() (Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	if err := m.session.SkipBreak(); err != nil {
		m.logger.Warn("skip break", zap.Error(err))
	}
	return m.afterSessionOp()
}

// settleSession brings the view up to date with the clock so a decision
// taken behind a prompt sees the current phase.
func (m *Model) settleSession() ViewMode {
	if m.session != nil {
		m.view = m.session.Tick()
	}
	return m.viewMode()
}

func (m Model) stopSession() Model {
	if m.session == nil {
		return m
	}
	if err := m.session.StopWithoutSaving(); err != nil {
		m.message = err.Error()
		return m
	}
	m.message = "Session discarded"
	next, _ := m.afterSessionOp()
	return next
}

// afterSessionOp reads the session, saves any handed-over result and drops
// the session once it is terminal.
func (m Model) afterSessionOp() (Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	m.view = m.session.View()
	cmd := m.saveResults()
	if m.view.Phase.Terminal() {
		m.session = nil
		if r, ok := m.notifier.(interface{ Reset() }); ok {
			r.Reset()
		}
		if m.pendingReload {
			m.pendingReload = false
			m = m.reloadMirror()
		}
	}
	return m, cmd
}

func (m *Model) saveResults() tea.Cmd {
	pending := *m.results
	if len(pending) == 0 {
		return nil
	}
	*m.results = nil
	saved := false
	for _, r := range pending {
		if r.ElapsedSeconds <= 0 {
			m.message = "Nothing recorded"
			continue
		}
		s, err := timer.SaveResult(m.ctx, m.db, r)
		if err != nil {
			m.fail("save session", err)
			continue
		}
		saved = true
		m.message = fmt.Sprintf("Saved %s on %s", util.FormatHuman(s.Duration()), r.Task.Name)
	}
	if !saved {
		return nil
	}
	m.refreshData()
	return syncCmd(m.ctx, m.syncer)
}

func (m Model) handleTick(msg TickMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.session != nil {
		m.view = m.session.Tick()
		m, cmd = m.afterSessionOp()
	}
	now := m.now()
	if m.days.Observe(now) {
		m.logger.Info("new day", zap.String("date", m.days.Current()))
		m.refreshData()
	}
	if m.session == nil && !m.modals.IsOpen() && now.Sub(m.lastSummaryCheck) >= config.DayCheckInterval {
		m.lastSummaryCheck = now
		m = m.checkSummary(now)
	}
	return m, cmd
}

// checkSummary opens the daily summary when it is due.
func (m Model) checkSummary(now time.Time) Model {
	last, _ := m.db.GetSetting(m.ctx, config.SettingLastSummaryShown)
	date, show := stats.ShouldShowSummary(now, last)
	if !show {
		return m
	}
	s, err := m.buildSummary(date)
	if err != nil {
		m.fail("daily summary", err)
		return m
	}
	m.modals.Open(&SummaryState{Summary: s})
	return m
}

func (m Model) buildSummary(date string) (stats.Summary, error) {
	loc := m.now().Location()
	day, err := time.ParseInLocation(stats.DateLayout, date, loc)
	if err != nil {
		return stats.Summary{}, err
	}
	sessions, err := m.db.SessionsBetween(m.ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return stats.Summary{}, err
	}
	tasks, err := m.db.ListTasks(m.ctx, true)
	if err != nil {
		return stats.Summary{}, err
	}
	target, err := m.db.GetDailyTarget(m.ctx, date)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.DailySummary(date, loc, sessions, tasks, target.TargetMinutes)
}

func (m Model) handleMirrorChanged() Model {
	if m.session != nil {
		m.pendingReload = true
		return m
	}
	return m.reloadMirror()
}

// reloadMirror merges the externally edited mirror file into the database.
func (m Model) reloadMirror() Model {
	if m.reload == nil {
		return m
	}
	snap, err := m.reload.Pull(m.ctx)
	if errors.Is(err, mirror.ErrNoData) {
		return m
	}
	if err != nil {
		m.fail("read mirror", err)
		return m
	}
	res, err := m.db.ImportSnapshot(m.ctx, snap, false)
	if err != nil {
		m.fail("merge mirror", err)
		return m
	}
	m.logger.Info("mirror reloaded",
		zap.Int("tasks_added", res.TasksAdded),
		zap.Int("tasks_updated", res.TasksUpdated),
		zap.Int("sessions_added", res.SessionsAdded))
	m.refreshData()
	if res.TasksAdded+res.TasksUpdated+res.SessionsAdded+res.TargetsSet > 0 {
		m.message = "Reloaded external changes"
	}
	return m
}

func (m Model) handleSyncDone(msg syncDoneMsg) Model {
	if msg.err != nil {
		if errors.Is(msg.err, mirror.ErrSheetsAuth) {
			m.message = "Sheets sign-in expired; set a fresh token"
		} else {
			m.message = "Sync failed: " + msg.err.Error()
		}
		return m
	}
	if m.message == "Syncing..." {
		m.message = fmt.Sprintf("Synced %d mirror(s)", len(msg.results))
	}
	return m
}
