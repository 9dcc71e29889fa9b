package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/timer"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("\nError: %v\n\nPress any key to continue.", m.err)
	}
	if m.modals.IsOpen() {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(CurrentTheme.Border).
			Padding(1, 2).
			Render(m.renderModal())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var body string
	switch m.viewMode() {
	case ViewFocus:
		body = m.renderFocus()
	case ViewTransition:
		body = m.renderTransition()
	case ViewBreak:
		body = m.renderBreak()
	default:
		body = m.renderHome()
	}
	var b strings.Builder
	b.WriteString(body)
	if m.message != "" {
		b.WriteString("\n" + CurrentTheme.Highlight.Render(m.message) + "\n")
	}
	b.WriteString("\n" + CurrentTheme.Dim.Render(m.keys.HelpForView(m.viewMode())))
	return CurrentTheme.Base.Render(b.String())
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")
	b.WriteString(m.renderHistory() + "\n")
	b.WriteString(m.renderTasks())
	return b.String()
}

// renderHeader shows today's focus time against the daily target.
func (m Model) renderHeader() string {
	now := m.now()
	title := CurrentTheme.Header.Render(config.AppName)
	filters := make([]string, 0, len(filterOrder))
	for _, f := range filterOrder {
		if f == m.filter {
			filters = append(filters, CurrentTheme.Selected.Render(f))
		} else {
			filters = append(filters, CurrentTheme.Dim.Render(f))
		}
	}
	top := title + "  " + CurrentTheme.Dim.Render(now.Format("Mon Jan 2")) + "   " + strings.Join(filters, " | ")

	worked := stats.TodayFocus(m.sessions, now)
	focus := "Today " + CurrentTheme.Clock.Render(util.FormatHuman(time.Duration(worked)*time.Second))
	target := m.todayTarget()
	if target <= 0 {
		return top + "\n" + focus + CurrentTheme.Dim.Render("  no target set")
	}
	ratio := stats.ProgressRatio(worked, target)
	line := fmt.Sprintf("%s / %s  %s %3.0f%%",
		focus, util.FormatHuman(time.Duration(target)*time.Minute), m.progress.ViewAs(ratio), ratio*100)
	if ratio >= 1 {
		line += " " + CurrentTheme.Success.Render("target met")
	}
	return top + "\n" + line
}

func (m Model) chartWidth() int {
	w := m.width - 36
	if w < config.MinChartWidth {
		w = config.MinChartWidth
	}
	if w > 40 {
		w = 40
	}
	return w
}

func bar(width int, share float64) string {
	n := int(share*float64(width) + 0.5)
	n = util.Clamp(n, 0, width)
	if share > 0 && n == 0 {
		n = 1
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(CurrentTheme.Focused.Render("History ("+m.filter+")") + "\n")
	switch m.filter {
	case config.FilterDay:
		b.WriteString(m.renderTaskBars())
	default:
		b.WriteString(m.renderDayBars())
	}
	return b.String()
}

func (m Model) renderTaskBars() string {
	totals := stats.GroupByTask(m.sessions, m.tasks)
	if len(totals) == 0 {
		return CurrentTheme.Dim.Render("  Nothing recorded yet today.") + "\n"
	}
	if len(totals) > config.MaxChartBars {
		totals = totals[:config.MaxChartBars]
	}
	peak := totals[0].Seconds
	width := m.chartWidth()
	var b strings.Builder
	for _, t := range totals {
		name := ansi.Truncate(t.TaskName, 16, config.TruncationSuffix)
		b.WriteString(fmt.Sprintf("  %-16s %s %s\n", name,
			CurrentTheme.Highlight.Render(bar(width, share(t.Seconds, peak))),
			util.FormatHuman(time.Duration(t.Seconds)*time.Second)))
	}
	return b.String()
}

// renderDayBars draws one bar per day coloured by its heat level, plus the
// current streak.
func (m Model) renderDayBars() string {
	now := m.now()
	days, err := stats.Heatmap(m.sessions, m.targetMinutes(), m.filter, now)
	if err != nil {
		return CurrentTheme.Error.Render(err.Error()) + "\n"
	}
	today := stats.DateKey(now)
	current, longest := stats.Streak(recentDays(days, today, len(days)))
	visible := days
	if m.filter == config.FilterMonth {
		visible = recentDays(days, today, config.MaxChartBars)
	}
	peak := 0
	for _, d := range visible {
		peak = max(peak, d.Seconds)
	}
	width := m.chartWidth()
	var b strings.Builder
	for _, d := range visible {
		label := d.Date
		if t, err := time.ParseInLocation(stats.DateLayout, d.Date, now.Location()); err == nil {
			label = t.Format("Mon 01-02")
		}
		style := CurrentTheme.Heat[d.Level]
		b.WriteString(fmt.Sprintf("  %-9s %s %s\n", label,
			style.Render(bar(width, share(d.Seconds, peak))),
			util.FormatHuman(time.Duration(d.Seconds)*time.Second)))
	}
	b.WriteString(CurrentTheme.Dim.Render(fmt.Sprintf("  streak %d day(s), best %d", current, longest)) + "\n")
	return b.String()
}

// recentDays keeps at most n days ending today.
func recentDays(days []stats.HeatDay, today string, n int) []stats.HeatDay {
	end := len(days)
	for i, d := range days {
		if d.Date == today {
			end = i + 1
			break
		}
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return days[start:end]
}

func share(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func (m Model) renderTasks() string {
	var b strings.Builder
	b.WriteString(CurrentTheme.Focused.Render("Tasks") + "\n")
	if len(m.tasks) == 0 {
		b.WriteString(CurrentTheme.Dim.Render("  No tasks. Press a to add one.") + "\n")
		return b.String()
	}
	start := 0
	if m.cursor >= config.MaxVisibleTasks {
		start = m.cursor - config.MaxVisibleTasks + 1
	}
	end := min(len(m.tasks), start+config.MaxVisibleTasks)
	nameWidth := 40
	if m.width < config.CompactModeThreshold {
		nameWidth = 20
	}
	for i := start; i < end; i++ {
		t := m.tasks[i]
		line := fmt.Sprintf("%s  %s", ansi.Truncate(t.Name, nameWidth, config.TruncationSuffix),
			CurrentTheme.Dim.Render(fmt.Sprintf("%dm", t.DefaultMinutes)))
		if i == m.cursor {
			b.WriteString(CurrentTheme.Selected.Render("> ") + taskDot(t) + " " + CurrentTheme.Selected.Render(line) + "\n")
		} else {
			b.WriteString("  " + taskDot(t) + " " + CurrentTheme.Task.Render(line) + "\n")
		}
	}
	if end < len(m.tasks) {
		b.WriteString(CurrentTheme.Dim.Render(fmt.Sprintf("  ... %d more", len(m.tasks)-end)) + "\n")
	}
	return b.String()
}

func taskDot(t models.Task) string {
	color := t.Color
	if color == "" {
		color = config.DefaultColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

func (m Model) renderFocus() string {
	v := m.view
	var b strings.Builder
	b.WriteString(CurrentTheme.Header.Render("Focus") + "  " + CurrentTheme.Task.Render(v.Task.Name) + "\n\n")

	clockStyle := CurrentTheme.Clock
	if v.Phase == timer.PhasePaused {
		clockStyle = CurrentTheme.Paused
	}
	if v.Mode == timer.ModeCountUp {
		b.WriteString(clockStyle.Render(util.FormatClock(v.Elapsed)) + CurrentTheme.Dim.Render("  counting up") + "\n")
	} else {
		b.WriteString(clockStyle.Render(util.FormatClock(v.Remaining)) +
			CurrentTheme.Dim.Render(" of "+util.FormatClock(v.Planned)) + "\n")
		b.WriteString(m.progress.ViewAs(v.Progress) + fmt.Sprintf(" %3.0f%%", v.Progress*100) + "\n")
		if v.CanSkip {
			b.WriteString(CurrentTheme.Success.Render("Skip available") + "\n")
		}
	}
	if v.Phase == timer.PhasePaused {
		b.WriteString(CurrentTheme.Paused.Render("Paused") + "\n")
	}
	return b.String()
}

func (m Model) renderTransition() string {
	v := m.view
	var b strings.Builder
	b.WriteString(CurrentTheme.Success.Render("Session complete") + "  " + CurrentTheme.Task.Render(v.Task.Name) + "\n\n")
	b.WriteString(fmt.Sprintf("Worked %s. Break starts shortly.\n", util.FormatHuman(v.Worked)))
	return b.String()
}

func (m Model) renderBreak() string {
	v := m.view
	var b strings.Builder
	title := "Break"
	style := CurrentTheme.Break
	if v.Phase == timer.PhaseBreakPaused {
		title = "Break (paused)"
		style = CurrentTheme.Paused
	}
	b.WriteString(style.Render(title) + "  " + CurrentTheme.Dim.Render("after "+v.Task.Name) + "\n\n")
	b.WriteString(style.Render(util.FormatClock(v.BreakRemaining)) + "\n")
	elapsed := 0.0
	if m.breakLen > 0 {
		elapsed = util.ClampFloat(1-float64(v.BreakRemaining)/float64(m.breakLen), 0, 1)
	}
	b.WriteString(m.progress.ViewAs(elapsed) + "\n")
	b.WriteString(CurrentTheme.Dim.Render(fmt.Sprintf("Worked %s", util.FormatHuman(v.Worked))) + "\n")
	return b.String()
}
