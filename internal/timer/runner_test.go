package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type viewLog struct {
	mu    sync.Mutex
	views []View
}

func (l *viewLog) add(v View) {
	l.mu.Lock()
	l.views = append(l.views, v)
	l.mu.Unlock()
}

func (l *viewLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.views)
}

func TestRunnerStopEndsGoroutine(t *testing.T) {
	s := New(writing)
	require.NoError(t, s.Start(0))
	log := &viewLog{}
	r := NewRunner(s, 5*time.Millisecond, log.add)
	r.Start(context.Background())

	require.Eventually(t, func() bool { return log.len() >= 2 }, time.Second, time.Millisecond)
	r.Stop()
	r.Stop()

	n := log.len()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, log.len(), "no ticks after Stop")
}

func TestRunnerExitsOnContextCancel(t *testing.T) {
	s := New(writing)
	require.NoError(t, s.Start(60))
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(s, 5*time.Millisecond, nil)
	r.Start(ctx)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatalf("runner did not exit after cancel")
	}
}

func TestRunnerExitsWhenSessionEnds(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	var mu sync.Mutex
	s := New(writing, WithClock(clock), OnComplete(func(r Result) {
		mu.Lock()
		rec.record(r)
		mu.Unlock()
	}))
	require.NoError(t, s.Start(1))
	clock.Advance(time.Hour)

	r := NewRunner(s, 2*time.Millisecond, nil)
	r.Start(context.Background())
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatalf("runner did not exit after the session ended")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, rec.results, 1)
	assert.Equal(t, 1, rec.results[0].ElapsedSeconds)
}

func TestRunnerDoneBeforeStart(t *testing.T) {
	r := NewRunner(New(writing), 0, nil)
	select {
	case <-r.Done():
	default:
		t.Fatalf("Done should be closed for a runner that never started")
	}
	r.Stop()
}
