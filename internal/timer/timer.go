// Package timer implements the focus/break session state machine.
//
// Every reading is recomputed from absolute timestamps taken from the injected
// Clock. Nothing is decremented per tick, so a late or skipped tick only shows
// up as a larger jump on the next observation.
package timer

import (
	"sync"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
)

// Mode selects how the work phase is measured.
type Mode int

const (
	ModeCountDown Mode = iota
	ModeCountUp
)

func (m Mode) String() string {
	if m == ModeCountUp {
		return "count-up"
	}
	return "count-down"
}

// Phase is the position of a session in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseCompleted // work done, break not started yet
	PhaseBreakRunning
	PhaseBreakPaused
	PhaseBreakCompleted
	PhaseStopped
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseRunning:        "running",
	PhasePaused:         "paused",
	PhaseCompleted:      "completed",
	PhaseBreakRunning:   "break running",
	PhaseBreakPaused:    "break paused",
	PhaseBreakCompleted: "break completed",
	PhaseStopped:        "stopped",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the session can no longer change.
func (p Phase) Terminal() bool {
	return p == PhaseBreakCompleted || p == PhaseStopped
}

// InBreak reports whether the break sub-timer owns the session.
func (p Phase) InBreak() bool {
	return p == PhaseBreakRunning || p == PhaseBreakPaused
}

// Task identifies what the session is attributed to.
type Task struct {
	ID   int64
	Name string
}

// Result is handed to the owner exactly once when a session ends with
// something to save.
type Result struct {
	Task           Task
	ElapsedSeconds int
	PlannedSeconds int // 0 for untimed sessions
	Skipped        bool
	CompletedAt    time.Time // end of the work phase
}

// Record converts the result into the session row the owner persists.
func (r Result) Record() models.Session {
	s := models.Session{
		TaskID:      r.Task.ID,
		DurationSec: r.ElapsedSeconds,
		Kind:        models.SessionWork,
		CompletedAt: r.CompletedAt,
	}
	if r.PlannedSeconds > 0 {
		planned := r.PlannedSeconds
		s.PlannedSec = &planned
	}
	return s
}

// View is a point-in-time reading of a session.
type View struct {
	Phase          Phase
	Mode           Mode
	Task           Task
	Planned        time.Duration
	Elapsed        time.Duration // active work time
	Remaining      time.Duration // count-down only
	Progress       float64       // 0..1, count-down only
	CanSkip        bool
	BreakRemaining time.Duration
	Worked         time.Duration // captured work time once the work phase ended
}

// Option configures a Session.
type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

func WithNotifier(n Notifier) Option { return func(s *Session) { s.notifier = n } }

// WithTransition delays the start of the break after the work phase ends.
func WithTransition(d time.Duration) Option { return func(s *Session) { s.transition = d } }

func WithBreak(d time.Duration) Option { return func(s *Session) { s.breakLen = d } }

// OnComplete registers the callback receiving the final result.
func OnComplete(fn func(Result)) Option { return func(s *Session) { s.onComplete = fn } }

// Session is one focus session followed by its break.
type Session struct {
	mu         sync.Mutex
	clock      Clock
	notifier   Notifier
	onComplete func(Result)
	transition time.Duration
	breakLen   time.Duration

	task    Task
	mode    Mode
	phase   Phase
	planned time.Duration

	startedAt   time.Time
	targetEnd   time.Time // count-down only
	pausedAt    time.Time // zero unless paused
	pausedTotal time.Duration

	worked      time.Duration // captured once when the work phase ends
	workEndedAt time.Time
	skipped     bool

	breakEnd         time.Time
	breakPausedAt    time.Time
	breakPausedTotal time.Duration

	reported bool
}

// New creates an idle session for task.
func New(task Task, opts ...Option) *Session {
	s := &Session{
		clock:    SystemClock,
		notifier: NopNotifier{},
		breakLen: config.BreakDuration,
		task:     task,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effect runs after the lock is released so callbacks may read the session.
type effect func()

func run(effects []effect) {
	for _, e := range effects {
		e()
	}
}

// Start begins the work phase. plannedSeconds == 0 selects count-up mode.
func (s *Session) Start(plannedSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return transitionErr("start", s.phase)
	}
	if plannedSeconds < 0 {
		plannedSeconds = 0
	}
	now := s.clock.Now()
	s.startedAt = now
	s.planned = time.Duration(plannedSeconds) * time.Second
	if plannedSeconds == 0 {
		s.mode = ModeCountUp
	} else {
		s.mode = ModeCountDown
		s.targetEnd = now.Add(s.planned)
	}
	s.phase = PhaseRunning
	return nil
}

// Pause freezes the running phase, work or break.
func (s *Session) Pause() error {
	s.mu.Lock()
	now := s.clock.Now()
	effects := s.advance(now)
	var err error
	switch s.phase {
	case PhaseRunning:
		s.pausedAt = now
		s.phase = PhasePaused
	case PhaseBreakRunning:
		s.breakPausedAt = now
		s.phase = PhaseBreakPaused
	default:
		err = transitionErr("pause", s.phase)
	}
	s.mu.Unlock()
	run(effects)
	return err
}

// Resume continues a paused phase. The paused span pushes the deadline back
// and is excluded from worked time. The pause mark is cleared as soon as it is
// folded in so repeated toggles never count a span twice.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	switch s.phase {
	case PhasePaused:
		delta := now.Sub(s.pausedAt)
		if delta < 0 {
			delta = 0
		}
		if s.mode == ModeCountDown {
			s.targetEnd = s.targetEnd.Add(delta)
		}
		s.pausedTotal += delta
		s.pausedAt = time.Time{}
		s.phase = PhaseRunning
	case PhaseBreakPaused:
		delta := now.Sub(s.breakPausedAt)
		if delta < 0 {
			delta = 0
		}
		s.breakEnd = s.breakEnd.Add(delta)
		s.breakPausedTotal += delta
		s.breakPausedAt = time.Time{}
		s.phase = PhaseBreakRunning
	default:
		return transitionErr("resume", s.phase)
	}
	return nil
}

// TogglePause pauses a running phase or resumes a paused one.
func (s *Session) TogglePause() error {
	s.mu.Lock()
	paused := s.phase == PhasePaused || s.phase == PhaseBreakPaused
	s.mu.Unlock()
	if paused {
		return s.Resume()
	}
	return s.Pause()
}

// Tick observes the clock, fires any due transitions and returns a reading.
func (s *Session) Tick() View {
	s.mu.Lock()
	now := s.clock.Now()
	effects := s.advance(now)
	v := s.view(now)
	s.mu.Unlock()
	run(effects)
	return v
}

// View returns a reading without firing transitions.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.clock.Now())
}

// SkipWithProgress ends a timed work phase early, crediting the active time
// worked so far. It is refused below config.SkipThreshold.
func (s *Session) SkipWithProgress() error {
	s.mu.Lock()
	now := s.clock.Now()
	effects := s.advance(now)
	var err error
	switch {
	case s.mode != ModeCountDown || (s.phase != PhaseRunning && s.phase != PhasePaused):
		err = transitionErr("skip", s.phase)
	case !s.canSkip(now):
		err = ErrSkipNotAllowed
	default:
		effects = append(effects, s.completeWork(now, s.elapsed(now), true)...)
	}
	s.mu.Unlock()
	run(effects)
	return err
}

// Finish ends an untimed work phase with the active time worked so far.
func (s *Session) Finish() error {
	s.mu.Lock()
	now := s.clock.Now()
	var effects []effect
	var err error
	if s.mode != ModeCountUp || (s.phase != PhaseRunning && s.phase != PhasePaused) {
		err = transitionErr("finish", s.phase)
	} else {
		effects = s.completeWork(now, s.elapsed(now), false)
	}
	s.mu.Unlock()
	run(effects)
	return err
}

// StopWithoutSaving discards the work phase. Nothing is ever reported.
func (s *Session) StopWithoutSaving() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning && s.phase != PhasePaused {
		return transitionErr("stop", s.phase)
	}
	s.phase = PhaseStopped
	s.reported = true
	return nil
}

// SkipBreak ends the break (or the transition before it) immediately and
// reports the captured work time.
func (s *Session) SkipBreak() error {
	s.mu.Lock()
	now := s.clock.Now()
	effects := s.advance(now)
	if s.phase != PhaseCompleted && !s.phase.InBreak() {
		err := transitionErr("skip break", s.phase)
		s.mu.Unlock()
		run(effects)
		return err
	}
	s.phase = PhaseBreakCompleted
	effects = append(effects, s.report()...)
	s.mu.Unlock()
	run(effects)
	return nil
}

// advance applies every transition due at now. Callers hold the lock.
func (s *Session) advance(now time.Time) []effect {
	var effects []effect
	if s.phase == PhaseRunning && s.mode == ModeCountDown && !now.Before(s.targetEnd) {
		// Natural completion credits the planned active time; pauses only
		// delayed the wall-clock end.
		effects = append(effects, s.completeWork(s.targetEnd, s.planned, false)...)
	}
	if s.phase == PhaseCompleted {
		breakStart := s.workEndedAt.Add(s.transition)
		if !now.Before(breakStart) {
			s.breakEnd = breakStart.Add(s.breakLen)
			s.phase = PhaseBreakRunning
		}
	}
	if s.phase == PhaseBreakRunning && !now.Before(s.breakEnd) {
		s.phase = PhaseBreakCompleted
		task := s.task
		notifier := s.notifier
		effects = append(effects, func() { notifier.BreakComplete(task) })
		effects = append(effects, s.report()...)
	}
	return effects
}

func (s *Session) completeWork(at time.Time, worked time.Duration, skipped bool) []effect {
	if worked < 0 {
		worked = 0
	}
	s.worked = worked
	s.workEndedAt = at
	s.skipped = skipped
	s.pausedAt = time.Time{}
	s.phase = PhaseCompleted
	task := s.task
	notifier := s.notifier
	return []effect{func() { notifier.WorkComplete(task, worked) }}
}

// report hands the captured work value off once.
func (s *Session) report() []effect {
	if s.reported {
		return nil
	}
	s.reported = true
	res := Result{
		Task:           s.task,
		ElapsedSeconds: int(s.worked / time.Second),
		PlannedSeconds: int(s.planned / time.Second),
		Skipped:        s.skipped,
		CompletedAt:    s.workEndedAt,
	}
	fn := s.onComplete
	if fn == nil {
		return nil
	}
	return []effect{func() { fn(res) }}
}

// elapsed is the active work time at now, excluding every paused span.
func (s *Session) elapsed(now time.Time) time.Duration {
	switch s.phase {
	case PhaseRunning:
		return now.Sub(s.startedAt) - s.pausedTotal
	case PhasePaused:
		return s.pausedAt.Sub(s.startedAt) - s.pausedTotal
	case PhaseIdle:
		return 0
	default:
		return s.worked
	}
}

func (s *Session) remaining(now time.Time) time.Duration {
	if s.mode != ModeCountDown {
		return 0
	}
	var r time.Duration
	switch s.phase {
	case PhaseRunning:
		r = s.targetEnd.Sub(now)
	case PhasePaused:
		r = s.targetEnd.Sub(s.pausedAt)
	case PhaseIdle:
		r = s.planned
	}
	if r < 0 {
		return 0
	}
	return r
}

func (s *Session) canSkip(now time.Time) bool {
	if s.mode != ModeCountDown || s.planned <= 0 {
		return false
	}
	if s.phase != PhaseRunning && s.phase != PhasePaused {
		return false
	}
	return float64(s.elapsed(now)) >= float64(s.planned)*config.SkipThreshold
}

func (s *Session) view(now time.Time) View {
	v := View{
		Phase:   s.phase,
		Mode:    s.mode,
		Task:    s.task,
		Planned: s.planned,
		Elapsed: s.elapsed(now),
		CanSkip: s.canSkip(now),
	}
	if v.Elapsed < 0 {
		v.Elapsed = 0
	}
	if s.mode == ModeCountDown {
		v.Remaining = s.remaining(now)
		if s.planned > 0 {
			v.Progress = float64(v.Elapsed) / float64(s.planned)
			if v.Progress > 1 {
				v.Progress = 1
			}
		}
	}
	switch s.phase {
	case PhaseCompleted:
		v.Worked = s.worked
		v.BreakRemaining = s.breakLen
	case PhaseBreakRunning:
		v.Worked = s.worked
		v.BreakRemaining = clampZero(s.breakEnd.Sub(now))
	case PhaseBreakPaused:
		v.Worked = s.worked
		v.BreakRemaining = clampZero(s.breakEnd.Sub(s.breakPausedAt))
	case PhaseBreakCompleted:
		v.Worked = s.worked
	}
	return v
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
