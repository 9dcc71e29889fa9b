package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// SnapshotSource produces the data to mirror.
type SnapshotSource interface {
	ExportSnapshot(ctx context.Context) (models.Snapshot, error)
}

// Result is the outcome of pushing to one mirror.
type Result struct {
	Mirror   string
	Err      error
	Duration time.Duration
}

// Syncer pushes snapshots to every configured mirror.
type Syncer struct {
	source  SnapshotSource
	mirrors []Mirror
	logger  *zap.Logger
	timeout time.Duration
}

func NewSyncer(source SnapshotSource, logger *zap.Logger, mirrors ...Mirror) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{source: source, mirrors: mirrors, logger: logger, timeout: 30 * time.Second}
}

// Mirrors returns the configured mirrors.
func (s *Syncer) Mirrors() []Mirror { return s.mirrors }

// Sync exports the current data and pushes it to all mirrors concurrently.
// One mirror failing does not cancel the others; the joined error carries
// every failure.
func (s *Syncer) Sync(ctx context.Context) ([]Result, error) {
	if len(s.mirrors) == 0 {
		return nil, nil
	}
	snap, err := s.source.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Push(ctx, snap)
}

// Push sends snap to all mirrors concurrently.
func (s *Syncer) Push(ctx context.Context, snap models.Snapshot) ([]Result, error) {
	results := make([]Result, len(s.mirrors))
	var mu sync.Mutex
	var errs []error

	var g errgroup.Group
	for i, m := range s.mirrors {
		i, m := i, m
		g.Go(func() error {
			pushCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			start := time.Now()
			err := m.Push(pushCtx, snap)
			results[i] = Result{Mirror: m.Name(), Err: err, Duration: time.Since(start)}
			if err != nil {
				s.logger.Warn("mirror push failed", zap.String("mirror", m.Name()), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			s.logger.Debug("mirror push ok", zap.String("mirror", m.Name()))
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}
