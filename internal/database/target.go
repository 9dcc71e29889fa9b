package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
)

const dateLayout = "2006-01-02"

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return invalid("date %q is not YYYY-MM-DD", date)
	}
	return nil
}

// GetDailyTarget returns the target for date. A day without a target yields
// a zero TargetMinutes and no error.
func (d *Database) GetDailyTarget(ctx context.Context, date string) (models.DailyTarget, error) {
	if err := validateDate(date); err != nil {
		return models.DailyTarget{}, wrapErr(EntityTarget, "get", 0, err)
	}
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	target := models.DailyTarget{Date: date}
	var createdAt, updatedAt string
	err := d.DB.QueryRowContext(ctx,
		"SELECT target_minutes, created_at, updated_at FROM daily_targets WHERE date = ?", date,
	).Scan(&target.TargetMinutes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return target, nil
	}
	if err != nil {
		return models.DailyTarget{}, wrapErr(EntityTarget, "get", 0, err)
	}
	target.CreatedAt = parseTime(createdAt)
	target.UpdatedAt = parseTime(updatedAt)
	return target, nil
}

// SetDailyTarget stores the focus target for date, replacing any earlier value.
func (d *Database) SetDailyTarget(ctx context.Context, date string, minutes int) (models.DailyTarget, error) {
	if err := validateDate(date); err != nil {
		return models.DailyTarget{}, wrapErr(EntityTarget, "set", 0, err)
	}
	if minutes < 0 || minutes > config.MaxTargetMinutes {
		return models.DailyTarget{}, wrapErr(EntityTarget, "set", 0,
			invalid("target must be between 0 and %d minutes", config.MaxTargetMinutes))
	}
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	now := d.stamp()
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO daily_targets (date, target_minutes, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET target_minutes = excluded.target_minutes, updated_at = excluded.updated_at`,
		date, minutes, formatTime(now), formatTime(now))
	if err != nil {
		return models.DailyTarget{}, wrapErr(EntityTarget, "set", 0, err)
	}
	return d.GetDailyTarget(ctx, date)
}

// ListDailyTargets returns every stored target keyed by date.
func (d *Database) ListDailyTargets(ctx context.Context) (map[string]models.DailyTarget, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx, "SELECT date, target_minutes, created_at, updated_at FROM daily_targets ORDER BY date")
	if err != nil {
		return nil, wrapErr(EntityTarget, "list", 0, err)
	}
	defer rows.Close()
	out := make(map[string]models.DailyTarget)
	for rows.Next() {
		var t models.DailyTarget
		var createdAt, updatedAt string
		if err := rows.Scan(&t.Date, &t.TargetMinutes, &createdAt, &updatedAt); err != nil {
			return nil, wrapErr(EntityTarget, "list", 0, err)
		}
		t.CreatedAt = parseTime(createdAt)
		t.UpdatedAt = parseTime(updatedAt)
		out[t.Date] = t
	}
	return out, rows.Err()
}
