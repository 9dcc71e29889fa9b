package database

import (
	"context"
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// FocusTotal returns the seconds worked in [from, to).
func (d *Database) FocusTotal(ctx context.Context, from, to time.Time) (int, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	var total int
	err := d.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration_sec), 0) FROM sessions WHERE completed_at >= ? AND completed_at < ?",
		formatTime(from), formatTime(to),
	).Scan(&total)
	if err != nil {
		return 0, wrapErr(EntitySession, "total", 0, err)
	}
	return total, nil
}

// TaskTotals returns worked time per task in [from, to), largest first.
func (d *Database) TaskTotals(ctx context.Context, from, to time.Time) ([]models.TaskTotal, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx, `
		SELECT t.id, t.name, SUM(s.duration_sec), COUNT(s.id)
		FROM sessions s
		JOIN tasks t ON t.id = s.task_id
		WHERE s.completed_at >= ? AND s.completed_at < ?
		GROUP BY t.id, t.name
		ORDER BY SUM(s.duration_sec) DESC, t.id ASC`,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, wrapErr(EntitySession, "totals", 0, err)
	}
	defer rows.Close()

	var out []models.TaskTotal
	for rows.Next() {
		var tt models.TaskTotal
		if err := rows.Scan(&tt.TaskID, &tt.TaskName, &tt.Seconds, &tt.Sessions); err != nil {
			return nil, wrapErr(EntitySession, "totals", 0, err)
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// DailyTotals returns worked time per calendar day in [from, to). Days are
// taken in from's location; days without sessions are omitted.
func (d *Database) DailyTotals(ctx context.Context, from, to time.Time) ([]models.DayTotal, error) {
	sessions, err := d.SessionsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	loc := from.Location()
	var out []models.DayTotal
	index := make(map[string]int)
	for _, s := range sessions {
		day := s.CompletedAt.In(loc).Format(dateLayout)
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, models.DayTotal{Date: day})
		}
		out[i].Seconds += s.DurationSec
	}
	return out, nil
}
