package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/deepwork/internal/mirror"
)

// TickMsg drives the session timer and the day/summary checks.
type TickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// mirrorChangedMsg reports an external edit of the mirror file.
type mirrorChangedMsg struct{}

// waitForMirror blocks on the watcher channel. A closed channel ends the wait
// loop for good.
func waitForMirror(events <-chan struct{}) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return mirrorChangedMsg{}
	}
}

type syncDoneMsg struct {
	results []mirror.Result
	err     error
}

func syncCmd(ctx context.Context, s Syncer) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		results, err := s.Sync(ctx)
		return syncDoneMsg{results: results, err: err}
	}
}
