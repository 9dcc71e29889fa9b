package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/deepwork/internal/util"
)

func (m Model) renderModal() string {
	var b strings.Builder
	switch st := m.modals.Current().(type) {
	case *TaskFormState:
		title := "New task"
		if st.TaskID != 0 {
			title = "Edit task"
		}
		b.WriteString(CurrentTheme.Header.Render(title) + "\n\n")
		b.WriteString(st.Form.View())
		b.WriteString("\n" + CurrentTheme.Dim.Render("[tab]next [enter]save [esc]cancel"))
	case *StartSessionState:
		b.WriteString(CurrentTheme.Header.Render("Start "+st.Task.Name) + "\n\n")
		b.WriteString(st.Form.View())
		b.WriteString("\n" + CurrentTheme.Dim.Render("[enter]start [esc]cancel"))
	case *ConfirmState:
		b.WriteString(CurrentTheme.Focused.Render(st.Prompt) + "\n\n")
		b.WriteString(CurrentTheme.Dim.Render("[y]es [n]o"))
	case *ArchivedState:
		b.WriteString(CurrentTheme.Header.Render("Archived tasks") + "\n\n")
		if len(st.Tasks) == 0 {
			b.WriteString(CurrentTheme.Dim.Render("Nothing archived.") + "\n")
		}
		for i, t := range st.Tasks {
			if i == st.Cursor {
				b.WriteString(CurrentTheme.Selected.Render("> "+t.Name) + "\n")
			} else {
				b.WriteString("  " + CurrentTheme.Task.Render(t.Name) + "\n")
			}
		}
		b.WriteString("\n" + CurrentTheme.Dim.Render("[enter]restore [esc]close"))
	case *TargetState:
		b.WriteString(CurrentTheme.Header.Render("Daily target "+st.Date) + "\n\n")
		b.WriteString(st.Form.View())
		b.WriteString("\n" + CurrentTheme.Dim.Render("[enter]save [esc]cancel"))
	case *ManualSessionState:
		b.WriteString(CurrentTheme.Header.Render("Log time on "+st.Task.Name) + "\n\n")
		b.WriteString(st.Form.View())
		b.WriteString("\n" + CurrentTheme.Dim.Render("[enter]save [esc]cancel"))
	case *SummaryState:
		b.WriteString(m.renderSummary(st))
	}
	return b.String()
}

func (m Model) renderSummary(st *SummaryState) string {
	s := st.Summary
	var b strings.Builder
	b.WriteString(CurrentTheme.Header.Render("Daily summary "+s.Date) + "\n\n")
	b.WriteString(fmt.Sprintf("Focus: %s in %d session(s)\n",
		CurrentTheme.Clock.Render(util.FormatHuman(time.Duration(s.TotalSeconds)*time.Second)), s.SessionCount))
	if s.TargetMinutes > 0 {
		status := CurrentTheme.Paused.Render("target missed")
		if s.TargetMet {
			status = CurrentTheme.Success.Render("target met")
		}
		b.WriteString(fmt.Sprintf("Target: %s  %s %3.0f%%  %s\n",
			util.FormatHuman(time.Duration(s.TargetMinutes)*time.Minute),
			m.progress.ViewAs(s.Progress()), s.Progress()*100, status))
	}
	if len(s.Tasks) > 0 {
		b.WriteString("\n")
		for _, t := range s.Tasks {
			b.WriteString(fmt.Sprintf("  %-20s %s\n", t.TaskName, util.FormatHuman(time.Duration(t.Seconds)*time.Second)))
		}
	} else {
		b.WriteString(CurrentTheme.Dim.Render("No sessions recorded. Tomorrow is a fresh start.") + "\n")
	}
	b.WriteString("\n" + CurrentTheme.Dim.Render("Press any key to close"))
	return b.String()
}
