package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var planned sql.NullInt64
	var kind sql.NullString
	var completedAt, createdAt string
	if err := row.Scan(&s.ID, &s.UID, &s.TaskID, &s.DurationSec, &planned, &kind, &completedAt, &createdAt); err != nil {
		return models.Session{}, err
	}
	s.PlannedSec = intPtr(planned)
	s.Kind = models.SessionKind(kind.String)
	if s.Kind == "" {
		s.Kind = models.SessionWork
	}
	s.CompletedAt = parseTime(completedAt)
	s.CreatedAt = parseTime(createdAt)
	return s, nil
}

func validateSession(s models.Session) error {
	if s.TaskID <= 0 {
		return invalid("session needs a task")
	}
	if s.DurationSec < 0 {
		return invalid("duration must not be negative")
	}
	if s.DurationSec > config.MaxSessionMinutes*60 {
		return invalid("duration longer than %d minutes", config.MaxSessionMinutes)
	}
	if s.PlannedSec != nil && *s.PlannedSec < 0 {
		return invalid("planned duration must not be negative")
	}
	switch s.Kind {
	case models.SessionWork, models.SessionManual:
	default:
		return invalid("unknown session kind %q", s.Kind)
	}
	return nil
}

// AddSession records worked time against an existing task. Missing UID, kind
// and completion time are filled in.
func (d *Database) AddSession(ctx context.Context, s models.Session) (models.Session, error) {
	if s.Kind == "" {
		s.Kind = models.SessionWork
	}
	if err := validateSession(s); err != nil {
		return models.Session{}, wrapErr(EntitySession, "add", 0, err)
	}
	if s.UID == "" {
		s.UID = uuid.NewString()
	}
	now := d.stamp()
	if s.CompletedAt.IsZero() {
		s.CompletedAt = now
	}
	s.CompletedAt = s.CompletedAt.UTC().Truncate(time.Second)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}

	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE id = ?", s.TaskID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO sessions (uid, task_id, duration_sec, planned_sec, kind, completed_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			s.UID, s.TaskID, s.DurationSec, nullableInt(s.PlannedSec), string(s.Kind),
			formatTime(s.CompletedAt), formatTime(s.CreatedAt))
		if err != nil {
			return err
		}
		s.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return models.Session{}, wrapErr(EntitySession, "add", 0, err)
	}
	d.logger.Info("session recorded",
		zap.Int64("task_id", s.TaskID),
		zap.Int("seconds", s.DurationSec),
		zap.String("kind", string(s.Kind)))
	return s, nil
}

// ListSessions returns every session in completion order.
func (d *Database) ListSessions(ctx context.Context) ([]models.Session, error) {
	return d.QuerySessions(ctx, NewSessionQuery())
}

// SessionsBetween returns sessions completed in [from, to).
func (d *Database) SessionsBetween(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	return d.QuerySessions(ctx, NewSessionQuery().WhereCompletedBetween(from, to))
}

func (d *Database) SessionsForTask(ctx context.Context, taskID int64) ([]models.Session, error) {
	return d.QuerySessions(ctx, NewSessionQuery().WhereTask(taskID))
}

func (d *Database) QuerySessions(ctx context.Context, q *SessionQuery) ([]models.Session, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	query, args := q.Build()
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(EntitySession, "list", 0, err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, wrapErr(EntitySession, "list", 0, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(EntitySession, "list", 0, err)
	}
	return out, nil
}

func (d *Database) DeleteSession(ctx context.Context, id int64) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	res, err := d.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return wrapErr(EntitySession, "delete", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapErr(EntitySession, "delete", id, ErrNotFound)
	}
	return nil
}
