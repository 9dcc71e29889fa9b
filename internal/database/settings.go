package database

import (
	"context"
	"database/sql"
	"errors"
)

func (d *Database) GetSetting(ctx context.Context, key string) (string, bool) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	var value sql.NullString
	err := d.DB.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			d.logger.Sugar().Warnw("read setting failed", "key", key, "error", err)
		}
		return "", false
	}
	if value.Valid {
		return value.String, true
	}
	return "", false
}

func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	_, err := d.DB.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value)
	return wrapErr(EntitySetting, "set", 0, err)
}

// AllSettings returns the settings table as a map.
func (d *Database) AllSettings(ctx context.Context) (map[string]string, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, wrapErr(EntitySetting, "list", 0, err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, wrapErr(EntitySetting, "list", 0, err)
		}
		out[key] = value.String
	}
	return out, rows.Err()
}
