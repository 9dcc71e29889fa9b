package tui

import (
	"context"

	"github.com/akyairhashvil/deepwork/internal/database"
	"github.com/akyairhashvil/deepwork/internal/mirror"
	"github.com/akyairhashvil/deepwork/internal/models"
)

// Database is the subset of storage the TUI reads and writes.
type Database interface {
	database.TaskRepository
	database.SessionRepository
	database.TargetRepository
	database.SettingsRepository
	ImportSnapshot(ctx context.Context, snap models.Snapshot, replace bool) (database.ImportResult, error)
}

// Syncer pushes the current data to the configured mirrors.
type Syncer interface {
	Sync(ctx context.Context) ([]mirror.Result, error)
}

// SnapshotPuller reads the file mirror after an external change.
type SnapshotPuller interface {
	Pull(ctx context.Context) (models.Snapshot, error)
}

var _ Database = (*database.Database)(nil)
