package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/report"
	"github.com/akyairhashvil/deepwork/internal/stats"
)

func taskForm(name, description string, minutes int) *form {
	return newForm(
		newField("Name", "What are you working on?", name, config.MaxTaskNameLength),
		newField("Description", "optional", description, config.MaxDescriptionLength),
		newField("Default minutes", "25", strconv.Itoa(minutes), 3),
	)
}

func minutesForm(label string, minutes int) *form {
	return newForm(newField(label, "minutes", strconv.Itoa(minutes), 4))
}

func handleOpenAddTask(m Model, _ string) (Model, tea.Cmd, bool) {
	m.modals.Open(&TaskFormState{Form: taskForm("", "", m.defaultMinutes)})
	return m, nil, true
}

func handleOpenEditTask(m Model, _ string) (Model, tea.Cmd, bool) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil, true
	}
	desc := ""
	if t.Description != nil {
		desc = *t.Description
	}
	m.modals.Open(&TaskFormState{TaskID: t.ID, Form: taskForm(t.Name, desc, t.DefaultMinutes)})
	return m, nil, true
}

func handleOpenStart(m Model, _ string) (Model, tea.Cmd, bool) {
	t, ok := m.selectedTask()
	if !ok {
		m.message = "Add a task first"
		return m, nil, true
	}
	m.modals.Open(&StartSessionState{Task: t, Form: minutesForm("Minutes (0 counts up)", t.DefaultMinutes)})
	return m, nil, true
}

func handleConfirmArchive(m Model, _ string) (Model, tea.Cmd, bool) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil, true
	}
	m.modals.Open(&ConfirmState{Action: ConfirmArchive, TaskID: t.ID, Prompt: fmt.Sprintf("Archive %q?", t.Name)})
	return m, nil, true
}

func handleConfirmDelete(m Model, _ string) (Model, tea.Cmd, bool) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil, true
	}
	m.modals.Open(&ConfirmState{
		Action: ConfirmDelete,
		TaskID: t.ID,
		Prompt: fmt.Sprintf("Delete %q and all of its sessions?", t.Name),
	})
	return m, nil, true
}

func handleConfirmStop(m Model, _ string) (Model, tea.Cmd, bool) {
	m.modals.Open(&ConfirmState{Action: ConfirmStop, Prompt: "Stop this session without saving?"})
	return m, nil, true
}

func handleOpenArchived(m Model, _ string) (Model, tea.Cmd, bool) {
	tasks, err := m.db.ListArchivedTasks(m.ctx)
	if err != nil {
		m.fail("load archived tasks", err)
		return m, nil, true
	}
	m.modals.Open(&ArchivedState{Tasks: tasks})
	return m, nil, true
}

func handleOpenTarget(m Model, _ string) (Model, tea.Cmd, bool) {
	m.modals.Open(&TargetState{
		Date: stats.DateKey(m.now()),
		Form: minutesForm("Today's target in minutes (0 clears)", m.todayTarget()),
	})
	return m, nil, true
}

func handleOpenManual(m Model, _ string) (Model, tea.Cmd, bool) {
	t, ok := m.selectedTask()
	if !ok {
		m.message = "Add a task first"
		return m, nil, true
	}
	m.modals.Open(&ManualSessionState{Task: t, Form: minutesForm("Minutes worked", t.DefaultMinutes)})
	return m, nil, true
}

func handleOpenSummary(m Model, _ string) (Model, tea.Cmd, bool) {
	s, err := m.buildSummary(stats.DateKey(m.now()))
	if err != nil {
		m.fail("daily summary", err)
		return m, nil, true
	}
	m.modals.Open(&SummaryState{Summary: s})
	return m, nil, true
}

// handleExportReport writes today's summary as a PDF into the report directory.
func handleExportReport(m Model, _ string) (Model, tea.Cmd, bool) {
	date := stats.DateKey(m.now())
	s, err := m.buildSummary(date)
	if err != nil {
		m.fail("build report", err)
		return m, nil, true
	}
	dir := m.reportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.fail("create report dir", err)
		return m, nil, true
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-report-%s.pdf", config.AppName, date))
	f, err := os.Create(path)
	if err != nil {
		m.fail("create report", err)
		return m, nil, true
	}
	if err := report.DailyPDF(f, s); err != nil {
		_ = f.Close()
		m.fail("write report", err)
		return m, nil, true
	}
	if err := f.Close(); err != nil {
		m.fail("write report", err)
		return m, nil, true
	}
	m.message = "Report saved to " + path
	return m, nil, true
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return m.closeModal(), nil
	}
	switch st := m.modals.Current().(type) {
	case *TaskFormState:
		if key == "enter" {
			return m.submitTaskForm(st), nil
		}
		return m, st.Form.Update(msg)
	case *StartSessionState:
		if key == "enter" {
			return m.submitStart(st)
		}
		return m, st.Form.Update(msg)
	case *ConfirmState:
		switch key {
		case "y", "Y", "enter":
			return m.confirm(st)
		case "n", "N":
			m.modals.Close()
		}
		return m, nil
	case *ArchivedState:
		return m.handleArchivedKey(st, key)
	case *TargetState:
		if key == "enter" {
			return m.submitTarget(st), nil
		}
		return m, st.Form.Update(msg)
	case *ManualSessionState:
		if key == "enter" {
			return m.submitManual(st)
		}
		return m, st.Form.Update(msg)
	case *SummaryState:
		return m.closeModal(), nil
	}
	return m, nil
}

// closeModal closes the open modal. Dismissing a summary records it as shown.
func (m Model) closeModal() Model {
	if m.modals.Is(ModalSummary) {
		if err := m.db.SetSetting(m.ctx, config.SettingLastSummaryShown, stats.DateKey(m.now())); err != nil {
			m.fail("save summary state", err)
		}
	}
	m.modals.Close()
	return m
}

// parseMinutes reads a minutes field. Empty input yields fallback.
func parseMinutes(raw string, fallback, limit int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > limit {
		return 0, fmt.Errorf("enter a whole number of minutes between 0 and %d", limit)
	}
	return n, nil
}

func (m Model) submitTaskForm(st *TaskFormState) Model {
	name := st.Form.Value(0)
	if name == "" {
		st.Form.err = "Name is required"
		return m
	}
	minutes, err := parseMinutes(st.Form.Value(2), m.defaultMinutes, config.MaxSessionMinutes)
	if err != nil {
		st.Form.err = err.Error()
		return m
	}
	var desc *string
	if d := st.Form.Value(1); d != "" {
		desc = &d
	}

	if st.TaskID == 0 {
		t, err := m.db.AddTask(m.ctx, models.Task{Name: name, Description: desc, DefaultMinutes: minutes})
		if err != nil {
			st.Form.err = err.Error()
			return m
		}
		m.message = "Added " + t.Name
	} else {
		if desc == nil {
			empty := ""
			desc = &empty
		}
		u := models.TaskUpdate{Name: &name, Description: desc, DefaultMinutes: &minutes}
		t, err := m.db.UpdateTask(m.ctx, st.TaskID, u)
		if err != nil {
			st.Form.err = err.Error()
			return m
		}
		m.message = "Updated " + t.Name
	}
	m.modals.Close()
	m.refreshData()
	return m
}

func (m Model) submitStart(st *StartSessionState) (tea.Model, tea.Cmd) {
	minutes, err := parseMinutes(st.Form.Value(0), st.Task.DefaultMinutes, config.MaxSessionMinutes)
	if err != nil {
		st.Form.err = err.Error()
		return m, nil
	}
	m.modals.Close()
	return m.startSession(st.Task.ID, st.Task.Name, minutes)
}

func (m Model) confirm(st *ConfirmState) (tea.Model, tea.Cmd) {
	m.modals.Close()
	switch st.Action {
	case ConfirmArchive:
		if _, err := m.db.ToggleTaskArchive(m.ctx, st.TaskID); err != nil {
			m.fail("archive task", err)
			return m, nil
		}
		m.message = "Task archived"
		m.refreshData()
		return m, syncCmd(m.ctx, m.syncer)
	case ConfirmDelete:
		if err := m.db.DeleteTask(m.ctx, st.TaskID); err != nil {
			m.fail("delete task", err)
			return m, nil
		}
		m.logger.Info("task deleted", zap.Int64("task_id", st.TaskID))
		m.message = "Task deleted"
		m.refreshData()
		return m, syncCmd(m.ctx, m.syncer)
	case ConfirmStop:
		if m.settleSession() != ViewFocus {
			// The work phase ended while the prompt was open.
			m.message = "Work phase already complete"
			return m.afterSessionOp()
		}
		return m.stopSession(), nil
	case ConfirmQuit:
		switch m.settleSession() {
		case ViewTransition, ViewBreak:
			next, cmd := m.endBreak()
			return next, quitAfter(cmd)
		}
		m = m.stopSession()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleArchivedKey(st *ArchivedState, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if st.Cursor > 0 {
			st.Cursor--
		}
	case "down", "j":
		if st.Cursor < len(st.Tasks)-1 {
			st.Cursor++
		}
	case "enter", "u":
		if st.Cursor >= len(st.Tasks) {
			return m, nil
		}
		t := st.Tasks[st.Cursor]
		if _, err := m.db.ToggleTaskArchive(m.ctx, t.ID); err != nil {
			m.fail("restore task", err)
			return m, nil
		}
		st.Tasks = append(st.Tasks[:st.Cursor:st.Cursor], st.Tasks[st.Cursor+1:]...)
		if st.Cursor >= len(st.Tasks) && st.Cursor > 0 {
			st.Cursor--
		}
		m.message = "Restored " + t.Name
		m.refreshData()
		return m, syncCmd(m.ctx, m.syncer)
	case "q":
		m.modals.Close()
	}
	return m, nil
}

func (m Model) submitTarget(st *TargetState) Model {
	minutes, err := parseMinutes(st.Form.Value(0), 0, config.MaxTargetMinutes)
	if err != nil {
		st.Form.err = err.Error()
		return m
	}
	if _, err := m.db.SetDailyTarget(m.ctx, st.Date, minutes); err != nil {
		st.Form.err = err.Error()
		return m
	}
	m.modals.Close()
	m.message = "Target saved"
	m.refreshData()
	return m
}

func (m Model) submitManual(st *ManualSessionState) (tea.Model, tea.Cmd) {
	minutes, err := parseMinutes(st.Form.Value(0), st.Task.DefaultMinutes, config.MaxSessionMinutes)
	if err != nil {
		st.Form.err = err.Error()
		return m, nil
	}
	if minutes == 0 {
		st.Form.err = "Enter at least one minute"
		return m, nil
	}
	_, err = m.db.AddSession(m.ctx, models.Session{
		TaskID:      st.Task.ID,
		DurationSec: minutes * 60,
		Kind:        models.SessionManual,
		CompletedAt: m.now(),
	})
	if err != nil {
		st.Form.err = err.Error()
		return m, nil
	}
	m.modals.Close()
	m.message = fmt.Sprintf("Logged %dm on %s", minutes, st.Task.Name)
	m.refreshData()
	return m, syncCmd(m.ctx, m.syncer)
}
