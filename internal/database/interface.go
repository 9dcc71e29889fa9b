package database

import (
	"context"
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// TaskRepository defines task-related database operations.
type TaskRepository interface {
	AddTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context, includeArchived bool) ([]models.Task, error)
	ListArchivedTasks(ctx context.Context) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) (models.Task, error)
	ToggleTaskArchive(ctx context.Context, id int64) (bool, error)
	DeleteTask(ctx context.Context, id int64) error
}

// SessionRepository defines session-related database operations.
type SessionRepository interface {
	AddSession(ctx context.Context, s models.Session) (models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	SessionsBetween(ctx context.Context, from, to time.Time) ([]models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// TargetRepository defines daily target operations.
type TargetRepository interface {
	GetDailyTarget(ctx context.Context, date string) (models.DailyTarget, error)
	SetDailyTarget(ctx context.Context, date string, minutes int) (models.DailyTarget, error)
	ListDailyTargets(ctx context.Context) (map[string]models.DailyTarget, error)
}

// SettingsRepository stores preferences as key/value pairs.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool)
	SetSetting(ctx context.Context, key, value string) error
}

// StatsRepository defines aggregate queries over sessions.
type StatsRepository interface {
	FocusTotal(ctx context.Context, from, to time.Time) (int, error)
	TaskTotals(ctx context.Context, from, to time.Time) ([]models.TaskTotal, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]models.DayTotal, error)
}

// SnapshotRepository moves all data in and out as a Snapshot.
type SnapshotRepository interface {
	ExportSnapshot(ctx context.Context) (models.Snapshot, error)
	ImportSnapshot(ctx context.Context, snap models.Snapshot, replace bool) (ImportResult, error)
}

// Repository combines all repository interfaces.
type Repository interface {
	TaskRepository
	SessionRepository
	TargetRepository
	StatsRepository
	SnapshotRepository
	SettingsRepository
}

var _ Repository = (*Database)(nil)
