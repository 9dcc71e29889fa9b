package tui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/akyairhashvil/deepwork/internal/stats"
)

type Theme struct {
	Name      string
	Base      lipgloss.Style
	Border    lipgloss.Color
	Header    lipgloss.Style
	Task      lipgloss.Style
	Selected  lipgloss.Style
	Clock     lipgloss.Style
	Paused    lipgloss.Style
	Break     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Input     lipgloss.Style
	Focused   lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	// Heat colours the history chart, indexed by stats.Level.
	Heat map[stats.Level]lipgloss.Style
}

var Themes = map[string]Theme{
	"default": {
		Name:      "Default",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("63"),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Task:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Clock:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Break:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1).Width(50),
		Focused:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		Heat: map[stats.Level]lipgloss.Style{
			stats.LevelNone:        lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			stats.LevelShort:       lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
			stats.LevelSolid:       lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
			stats.LevelBelowTarget: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			stats.LevelTargetMet:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		},
	},
	"dracula": {
		Name:      "Dracula",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("62"),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("50")).Bold(true),
		Task:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Clock:     lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true),
		Break:     lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("50")).Padding(0, 1).Width(50),
		Focused:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		Heat: map[stats.Level]lipgloss.Style{
			stats.LevelNone:        lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
			stats.LevelShort:       lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
			stats.LevelSolid:       lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
			stats.LevelBelowTarget: lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
			stats.LevelTargetMet:   lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		},
	},
}

// CurrentTheme holds the active theme.
var CurrentTheme = Themes["default"]

// SetTheme switches the active theme. Unknown names are ignored.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if ok {
		CurrentTheme = t
	}
	return ok
}

// ThemeNames lists the available theme keys in order.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
