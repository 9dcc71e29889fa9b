package mirror

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"go.uber.org/zap"
)

const fileBackend = "file"

// FileMirror keeps the data as pretty-printed JSON at a fixed path.
type FileMirror struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	lastSum  [sha256.Size]byte
	hasWrite bool
}

func NewFileMirror(path string, logger *zap.Logger) *FileMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileMirror{path: path, logger: logger, now: time.Now}
}

func (m *FileMirror) Name() string { return fileBackend }

func (m *FileMirror) Path() string { return m.path }

// Push writes snap atomically, stamping metadata.lastSaved.
func (m *FileMirror) Push(ctx context.Context, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return wrap(fileBackend, err)
	}
	snap.Metadata.LastSaved = m.now().UTC()
	data, err := encode(snap)
	if err != nil {
		return wrap(fileBackend, err)
	}
	// Record before the rename so a watcher never sees our own write as foreign.
	m.mu.Lock()
	m.lastSum = sha256.Sum256(data)
	m.hasWrite = true
	m.mu.Unlock()

	if err := writeAtomic(m.path, data); err != nil {
		return wrap(fileBackend, err)
	}
	m.logger.Debug("mirror file written", zap.String("path", m.path), zap.Int("bytes", len(data)))
	return nil
}

// Pull reads the file. Fields missing from the file keep their defaults.
func (m *FileMirror) Pull(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, wrap(fileBackend, err)
	}
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Snapshot{}, wrap(fileBackend, ErrNoData)
	}
	if err != nil {
		return models.Snapshot{}, wrap(fileBackend, err)
	}
	snap, err := Decode(data, m.now())
	if err != nil {
		return models.Snapshot{}, wrap(fileBackend, fmt.Errorf("%s: %w", m.path, err))
	}
	return snap, nil
}

// IsOwnWrite reports whether the file still holds exactly what Push last wrote.
func (m *FileMirror) IsOwnWrite() bool {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasWrite && sum == m.lastSum
}

// Decode parses snapshot JSON on top of an empty snapshot stamped with now.
func Decode(data []byte, now time.Time) (models.Snapshot, error) {
	snap := models.NewSnapshot(config.SnapshotFormat, now)
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Snapshot{}, ErrNoData
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []models.SnapshotTask{}
	}
	if snap.Sessions == nil {
		snap.Sessions = []models.SnapshotSession{}
	}
	if snap.DailyTargets == nil {
		snap.DailyTargets = map[string]models.SnapshotTarget{}
	}
	if snap.Settings == nil {
		snap.Settings = map[string]any{}
	}
	return snap, nil
}

func encode(snap models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Backup writes snap to dir as deepwork-backup-YYYY-MM-DD.json and returns
// the file path.
func Backup(dir string, snap models.Snapshot, now time.Time) (string, error) {
	exported := now.UTC()
	snap.Metadata.ExportedAt = &exported
	data, err := encode(snap)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-backup-%s.json", config.AppName, now.Format("2006-01-02")))
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
