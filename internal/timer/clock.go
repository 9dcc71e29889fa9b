package timer

import "time"

// Clock provides the wall-clock readings every timer decision is derived from.
// Tests inject a fake to move time deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
