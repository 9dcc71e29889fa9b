package timer

import (
	"context"
	"sync"
	"time"
)

// Runner polls a Session on a fixed interval from its own goroutine. The
// interval only controls how often the display refreshes; correctness comes
// from the session's timestamps.
type Runner struct {
	session  *Session
	interval time.Duration
	onTick   func(View)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a stopped runner. onTick may be nil.
func NewRunner(s *Session, interval time.Duration, onTick func(View)) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{session: s, interval: interval, onTick: onTick}
}

// Start launches the polling goroutine. It exits when ctx is cancelled, Stop
// is called, or the session reaches a terminal phase.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v := r.session.Tick()
			if r.onTick != nil {
				r.onTick(v)
			}
			if v.Phase.Terminal() {
				return
			}
		}
	}
}

// Stop cancels polling and waits for the goroutine to exit. Safe to call
// more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed once the polling goroutine has exited.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return r.done
}
