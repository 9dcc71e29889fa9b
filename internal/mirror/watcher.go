package mirror

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// FileWatcher signals when the mirror file is changed by someone else.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	mirror   *FileMirror
	target   string
	debounce time.Duration
	logger   *zap.Logger
	events   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewFileWatcher watches the directory holding m's file. Writes made through
// m itself are not reported.
func NewFileWatcher(m *FileMirror, debounce time.Duration, logger *zap.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, wrap(fileBackend, err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		watcher:  w,
		mirror:   m,
		target:   filepath.Clean(m.Path()),
		debounce: debounce,
		logger:   logger,
		events:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Events delivers one value per debounced burst of foreign changes.
func (fw *FileWatcher) Events() <-chan struct{} { return fw.events }

// Start begins watching. It does not block.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(filepath.Dir(fw.target)); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return wrap(fileBackend, err)
	}
	go fw.run(ctx)
	return nil
}

// Stop ends the watch and waits for the loop to exit. Safe to call more than once.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	wasRunning := fw.running
	fw.running = false
	fw.mu.Unlock()

	if wasRunning {
		select {
		case <-fw.stopCh:
		default:
			close(fw.stopCh)
		}
		<-fw.doneCh
	}
	if err := fw.watcher.Close(); err != nil {
		fw.logger.Debug("close watcher", zap.Error(err))
	}
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("mirror watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			if fw.mirror != nil && fw.mirror.IsOwnWrite() {
				continue
			}
			fw.logger.Info("mirror file changed externally", zap.String("path", fw.target))
			select {
			case fw.events <- struct{}{}:
			default:
			}
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.target {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
