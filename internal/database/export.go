package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const settingCreatedAt = "created_at"

// ImportResult counts what an import changed.
type ImportResult struct {
	TasksAdded      int
	TasksUpdated    int
	SessionsAdded   int
	SessionsSkipped int
	TargetsSet      int
}

// LegacyUID derives a stable uid for records that predate uids, so importing
// the same file twice does not duplicate them.
func LegacyUID(kind string, id int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("deepwork:%s:%d", kind, id))).String()
}

// ExportSnapshot captures all stored data.
func (d *Database) ExportSnapshot(ctx context.Context) (models.Snapshot, error) {
	now := d.stamp()
	snap := models.NewSnapshot(config.SnapshotFormat, now)
	snap.Metadata.ExportedAt = &now

	tasks, err := d.ListTasks(ctx, true)
	if err != nil {
		return models.Snapshot{}, wrapErr(EntitySnapshot, "export", 0, err)
	}
	taskUIDs := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		taskUIDs[t.ID] = t.UID
		snap.Tasks = append(snap.Tasks, models.SnapshotTask{
			ID:              t.ID,
			UID:             t.UID,
			Name:            t.Name,
			Description:     t.Description,
			DefaultDuration: t.DefaultMinutes,
			Color:           t.Color,
			IsArchived:      t.Archived,
			CreatedAt:       t.CreatedAt,
			UpdatedAt:       t.UpdatedAt,
		})
	}

	sessions, err := d.ListSessions(ctx)
	if err != nil {
		return models.Snapshot{}, wrapErr(EntitySnapshot, "export", 0, err)
	}
	for _, s := range sessions {
		snap.Sessions = append(snap.Sessions, models.SnapshotSession{
			ID:              s.ID,
			UID:             s.UID,
			TaskID:          s.TaskID,
			TaskUID:         taskUIDs[s.TaskID],
			Duration:        s.DurationSec,
			PlannedDuration: s.PlannedSec,
			SessionType:     string(s.Kind),
			CompletedAt:     s.CompletedAt,
			CreatedAt:       s.CreatedAt,
		})
	}

	targets, err := d.ListDailyTargets(ctx)
	if err != nil {
		return models.Snapshot{}, wrapErr(EntitySnapshot, "export", 0, err)
	}
	for date, t := range targets {
		snap.DailyTargets[date] = models.SnapshotTarget{
			TargetMinutes: t.TargetMinutes,
			TargetDate:    date,
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
		}
	}

	settings, err := d.AllSettings(ctx)
	if err != nil {
		return models.Snapshot{}, wrapErr(EntitySnapshot, "export", 0, err)
	}
	for key, value := range settings {
		if key == settingCreatedAt {
			if created := parseTime(value); !created.IsZero() {
				snap.Metadata.Created = created
			}
			continue
		}
		snap.Settings[key] = value
	}
	return snap, nil
}

// ImportSnapshot loads snap into the store. With replace set, existing tasks,
// sessions and targets are removed first; otherwise records are merged by uid
// and the newer copy of a task or target wins.
func (d *Database) ImportSnapshot(ctx context.Context, snap models.Snapshot, replace bool) (ImportResult, error) {
	var result ImportResult
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if replace {
			for _, table := range []string{"sessions", "tasks", "daily_targets"} {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
					return fmt.Errorf("clear %s: %w", table, err)
				}
			}
		}

		byLegacyID := make(map[int64]int64, len(snap.Tasks))
		byUID := make(map[string]int64, len(snap.Tasks))
		for _, t := range snap.Tasks {
			localID, added, updated, err := d.importTask(ctx, tx, t)
			if err != nil {
				return err
			}
			byLegacyID[t.ID] = localID
			byUID[taskUID(t)] = localID
			if added {
				result.TasksAdded++
			} else if updated {
				result.TasksUpdated++
			}
		}

		sessions := append([]models.SnapshotSession(nil), snap.Sessions...)
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].CompletedAt.Before(sessions[j].CompletedAt)
		})
		for _, s := range sessions {
			taskID, err := resolveTask(ctx, tx, s, byUID, byLegacyID)
			if err != nil {
				return err
			}
			if taskID == 0 || s.Duration < 0 {
				result.SessionsSkipped++
				continue
			}
			added, err := d.importSession(ctx, tx, s, taskID)
			if err != nil {
				return err
			}
			if added {
				result.SessionsAdded++
			} else {
				result.SessionsSkipped++
			}
		}

		for date, t := range snap.DailyTargets {
			if t.TargetDate != "" {
				date = t.TargetDate
			}
			set, err := d.importTarget(ctx, tx, date, t)
			if err != nil {
				return err
			}
			if set {
				result.TargetsSet++
			}
		}

		for key, value := range snap.Settings {
			if key == settingCreatedAt {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
				key, models.SettingString(value)); err != nil {
				return fmt.Errorf("import setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, wrapErr(EntitySnapshot, "import", 0, err)
	}
	d.logger.Info("snapshot imported",
		zap.Bool("replace", replace),
		zap.Int("tasks_added", result.TasksAdded),
		zap.Int("tasks_updated", result.TasksUpdated),
		zap.Int("sessions_added", result.SessionsAdded),
		zap.Int("sessions_skipped", result.SessionsSkipped))
	return result, nil
}

func taskUID(t models.SnapshotTask) string {
	if t.UID != "" {
		return t.UID
	}
	return LegacyUID("task", t.ID)
}

func sessionUID(s models.SnapshotSession) string {
	if s.UID != "" {
		return s.UID
	}
	return LegacyUID("session", s.ID)
}

func orNow(t time.Time, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}

func (d *Database) importTask(ctx context.Context, tx *sql.Tx, t models.SnapshotTask) (int64, bool, bool, error) {
	uid := taskUID(t)
	if t.DefaultDuration == 0 {
		t.DefaultDuration = int(config.DefaultWorkDuration.Minutes())
	}
	if t.Color == "" {
		t.Color = config.DefaultColor
	}
	if err := validateTask(t.Name, t.Description, t.DefaultDuration); err != nil {
		return 0, false, false, fmt.Errorf("task %q: %w", t.Name, err)
	}
	now := d.stamp()
	created := orNow(t.CreatedAt, now)
	updated := orNow(t.UpdatedAt, created)

	var id int64
	var storedUpdated string
	err := tx.QueryRowContext(ctx, "SELECT id, updated_at FROM tasks WHERE uid = ?", uid).Scan(&id, &storedUpdated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (uid, name, description, default_minutes, color, archived, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uid, t.Name, nullableString(t.Description), t.DefaultDuration, t.Color, boolToInt(t.IsArchived),
			formatTime(created), formatTime(updated))
		if err != nil {
			return 0, false, false, err
		}
		id, err = res.LastInsertId()
		return id, true, false, err
	case err != nil:
		return 0, false, false, err
	}

	if !updated.After(parseTime(storedUpdated)) {
		return id, false, false, nil
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE tasks SET name = ?, description = ?, default_minutes = ?, color = ?, archived = ?, updated_at = ? WHERE id = ?",
		t.Name, nullableString(t.Description), t.DefaultDuration, t.Color, boolToInt(t.IsArchived), formatTime(updated), id)
	return id, false, err == nil, err
}

func resolveTask(ctx context.Context, tx *sql.Tx, s models.SnapshotSession, byUID map[string]int64, byLegacyID map[int64]int64) (int64, error) {
	if s.TaskUID != "" {
		if id, ok := byUID[s.TaskUID]; ok {
			return id, nil
		}
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM tasks WHERE uid = ?", s.TaskUID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return id, err
	}
	return byLegacyID[s.TaskID], nil
}

func (d *Database) importSession(ctx context.Context, tx *sql.Tx, s models.SnapshotSession, taskID int64) (bool, error) {
	kind := models.SessionKind(s.SessionType)
	if kind != models.SessionManual {
		kind = models.SessionWork
	}
	now := d.stamp()
	completed := orNow(s.CompletedAt, now)
	res, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (uid, task_id, duration_sec, planned_sec, kind, completed_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sessionUID(s), taskID, s.Duration, nullableInt(s.PlannedDuration), string(kind),
		formatTime(completed), formatTime(orNow(s.CreatedAt, completed)))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (d *Database) importTarget(ctx context.Context, tx *sql.Tx, date string, t models.SnapshotTarget) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	if t.TargetMinutes < 0 || t.TargetMinutes > config.MaxTargetMinutes {
		return false, invalid("target for %s out of range", date)
	}
	now := d.stamp()
	created := orNow(t.CreatedAt, now)
	updated := orNow(t.UpdatedAt, created)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO daily_targets (date, target_minutes, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET target_minutes = excluded.target_minutes, updated_at = excluded.updated_at
		WHERE excluded.updated_at > daily_targets.updated_at`,
		date, t.TargetMinutes, formatTime(created), formatTime(updated))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
