package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const taskColumns = "id, uid, name, description, default_minutes, color, archived, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var desc sql.NullString
	var archived int
	var createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.UID, &t.Name, &desc, &t.DefaultMinutes, &t.Color, &archived, &createdAt, &updatedAt); err != nil {
		return models.Task{}, err
	}
	t.Description = stringPtr(desc)
	t.Archived = archived == 1
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func validateTask(name string, description *string, defaultMinutes int) error {
	if strings.TrimSpace(name) == "" {
		return invalid("task name is required")
	}
	if len([]rune(name)) > config.MaxTaskNameLength {
		return invalid("task name longer than %d characters", config.MaxTaskNameLength)
	}
	if description != nil && len([]rune(*description)) > config.MaxDescriptionLength {
		return invalid("description longer than %d characters", config.MaxDescriptionLength)
	}
	if defaultMinutes < 0 || defaultMinutes > config.MaxSessionMinutes {
		return invalid("default minutes must be between 0 and %d", config.MaxSessionMinutes)
	}
	return nil
}

// AddTask stores a new task. Zero DefaultMinutes and an empty Color take the
// application defaults.
func (d *Database) AddTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.DefaultMinutes == 0 {
		t.DefaultMinutes = int(config.DefaultWorkDuration.Minutes())
	}
	if t.Color == "" {
		t.Color = config.DefaultColor
	}
	if err := validateTask(t.Name, t.Description, t.DefaultMinutes); err != nil {
		return models.Task{}, wrapErr(EntityTask, "add", 0, err)
	}
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	now := d.stamp()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	res, err := d.DB.ExecContext(ctx,
		"INSERT INTO tasks (uid, name, description, default_minutes, color, archived, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.UID, t.Name, nullableString(t.Description), t.DefaultMinutes, t.Color, boolToInt(t.Archived),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "add", 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "add", 0, err)
	}
	t.ID = id
	d.logger.Debug("task added", zap.Int64("id", t.ID), zap.String("uid", t.UID))
	return t, nil
}

func (d *Database) GetTask(ctx context.Context, id int64) (models.Task, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	row := d.DB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "get", id, err)
	}
	return t, nil
}

// ListTasks returns tasks in creation order. Archived tasks are included only
// when includeArchived is set.
func (d *Database) ListTasks(ctx context.Context, includeArchived bool) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	return d.queryTasks(ctx, query+" ORDER BY created_at ASC, id ASC")
}

func (d *Database) ListArchivedTasks(ctx context.Context) ([]models.Task, error) {
	return d.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE archived = 1 ORDER BY updated_at DESC, id DESC")
}

func (d *Database) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(EntityTask, "list", 0, err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapErr(EntityTask, "list", 0, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(EntityTask, "list", 0, err)
	}
	return out, nil
}

// UpdateTask applies the non-nil fields of u and returns the stored task.
func (d *Database) UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) (models.Task, error) {
	var out models.Task
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		t, err := scanTask(tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
		if err != nil {
			return err
		}
		if u.Name != nil {
			t.Name = strings.TrimSpace(*u.Name)
		}
		if u.Description != nil {
			t.Description = u.Description
		}
		if u.DefaultMinutes != nil {
			t.DefaultMinutes = *u.DefaultMinutes
		}
		if u.Color != nil && *u.Color != "" {
			t.Color = *u.Color
		}
		if err := validateTask(t.Name, t.Description, t.DefaultMinutes); err != nil {
			return err
		}
		t.UpdatedAt = d.stamp()
		if _, err := tx.ExecContext(ctx,
			"UPDATE tasks SET name = ?, description = ?, default_minutes = ?, color = ?, updated_at = ? WHERE id = ?",
			t.Name, nullableString(t.Description), t.DefaultMinutes, t.Color, formatTime(t.UpdatedAt), id); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "update", id, err)
	}
	return out, nil
}

// ToggleTaskArchive flips the archived flag and returns the new value.
func (d *Database) ToggleTaskArchive(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	res, err := d.DB.ExecContext(ctx,
		"UPDATE tasks SET archived = 1 - archived, updated_at = ? WHERE id = ?",
		formatTime(d.stamp()), id)
	if err != nil {
		return false, wrapErr(EntityTask, "archive", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, wrapErr(EntityTask, "archive", id, ErrNotFound)
	}
	var archived int
	if err := d.DB.QueryRowContext(ctx, "SELECT archived FROM tasks WHERE id = ?", id).Scan(&archived); err != nil {
		return false, wrapErr(EntityTask, "archive", id, err)
	}
	return archived == 1, nil
}

// DeleteTask removes a task and every session recorded against it.
func (d *Database) DeleteTask(ctx context.Context, id int64) error {
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE task_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	return wrapErr(EntityTask, "delete", id, err)
}
