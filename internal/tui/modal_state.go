package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/stats"
)

type ModalType int

const (
	ModalNone ModalType = iota
	ModalTaskForm
	ModalStartSession
	ModalConfirm
	ModalArchived
	ModalTarget
	ModalManualSession
	ModalSummary
)

type ModalState interface {
	Type() ModalType
}

// TaskFormState adds a task when TaskID is zero and edits it otherwise.
type TaskFormState struct {
	TaskID int64
	Form   *form
}

func (s *TaskFormState) Type() ModalType { return ModalTaskForm }

type StartSessionState struct {
	Task models.Task
	Form *form
}

func (s *StartSessionState) Type() ModalType { return ModalStartSession }

type ConfirmAction int

const (
	ConfirmArchive ConfirmAction = iota
	ConfirmDelete
	ConfirmStop
	ConfirmQuit
)

type ConfirmState struct {
	Action ConfirmAction
	TaskID int64
	Prompt string
}

func (s *ConfirmState) Type() ModalType { return ModalConfirm }

type ArchivedState struct {
	Tasks  []models.Task
	Cursor int
}

func (s *ArchivedState) Type() ModalType { return ModalArchived }

type TargetState struct {
	Date string
	Form *form
}

func (s *TargetState) Type() ModalType { return ModalTarget }

type ManualSessionState struct {
	Task models.Task
	Form *form
}

func (s *ManualSessionState) Type() ModalType { return ModalManualSession }

type SummaryState struct {
	Summary stats.Summary
}

func (s *SummaryState) Type() ModalType { return ModalSummary }

// ModalManager tracks the open modal.
type ModalManager struct {
	current ModalState
}

func newModalManager() *ModalManager {
	return &ModalManager{}
}

func (m *ModalManager) ActiveModal() ModalType {
	if m.current == nil {
		return ModalNone
	}
	return m.current.Type()
}

func (m *ModalManager) IsOpen() bool {
	return m.ActiveModal() != ModalNone
}

func (m *ModalManager) Current() ModalState {
	return m.current
}

func (m *ModalManager) Open(state ModalState) {
	m.current = state
}

func (m *ModalManager) Close() {
	m.current = nil
}

func (m *ModalManager) Is(t ModalType) bool {
	return m.ActiveModal() == t
}

type formField struct {
	label string
	input textinput.Model
}

func newField(label, placeholder, value string, limit int) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.SetValue(value)
	return formField{label: label, input: ti}
}

// form is a stack of text inputs cycled with tab.
type form struct {
	fields []formField
	focus  int
	err    string
}

func newForm(fields ...formField) *form {
	f := &form{fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f *form) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return nil
	case "shift+tab", "up":
		f.move(-1)
		return nil
	}
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) move(delta int) {
	if len(f.fields) < 2 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *form) Value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) SetValue(i int, v string) {
	if i >= 0 && i < len(f.fields) {
		f.fields[i].input.SetValue(v)
	}
}

func (f *form) View() string {
	var b strings.Builder
	for i, field := range f.fields {
		label := CurrentTheme.Dim.Render(field.label)
		if i == f.focus {
			label = CurrentTheme.Focused.Render(field.label)
		}
		b.WriteString(label + "\n" + field.input.View() + "\n")
	}
	if f.err != "" {
		b.WriteString(CurrentTheme.Error.Render(f.err) + "\n")
	}
	return b.String()
}
