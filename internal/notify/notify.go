// Package notify tells the user a timer phase has ended using the terminal
// bell and window title.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/timer"
	"github.com/akyairhashvil/deepwork/internal/util"
)

// TerminalNotifier rings the bell and retitles the terminal window.
type TerminalNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	sound  bool
	title  bool
	logger *zap.Logger
}

var _ timer.Notifier = (*TerminalNotifier)(nil)

// NewTerminal writes escapes to w. sound toggles the bell and title toggles
// window title updates.
func NewTerminal(w io.Writer, sound, title bool, logger *zap.Logger) *TerminalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalNotifier{w: w, sound: sound, title: title, logger: logger}
}

// SetSound enables or disables the bell.
func (n *TerminalNotifier) SetSound(on bool) {
	n.mu.Lock()
	n.sound = on
	n.mu.Unlock()
}

func (n *TerminalNotifier) WorkComplete(task timer.Task, worked time.Duration) {
	n.emit(fmt.Sprintf("%s: %s done (%s), take a break", config.AppName, task.Name, util.FormatHuman(worked)))
}

func (n *TerminalNotifier) BreakComplete(task timer.Task) {
	n.emit(fmt.Sprintf("%s: break over, back to %s", config.AppName, task.Name))
}

// Reset puts the window title back to the application name.
func (n *TerminalNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.title {
		return
	}
	n.write(ansi.SetWindowTitle(config.AppName))
}

func (n *TerminalNotifier) emit(title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out string
	if n.sound {
		out += string(rune(ansi.BEL))
	}
	if n.title {
		out += ansi.SetWindowTitle(title)
	}
	if out == "" {
		return
	}
	n.write(out)
}

func (n *TerminalNotifier) write(s string) {
	if _, err := io.WriteString(n.w, s); err != nil {
		n.logger.Debug("notify write failed", zap.Error(err))
	}
}

// Nop discards notifications.
type Nop = timer.NopNotifier
