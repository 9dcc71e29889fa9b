// Package stats derives focus totals, history ranges and daily summaries from
// recorded sessions. Everything here is pure; callers pass the current time.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
)

const DateLayout = "2006-01-02"

var ErrUnknownFilter = errors.New("unknown filter")

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// Range returns the half-open interval [from, to) covered by filter at now.
func Range(filter string, now time.Time) (time.Time, time.Time, error) {
	switch filter {
	case config.FilterDay:
		from := StartOfDay(now)
		return from, from.AddDate(0, 0, 1), nil
	case config.FilterWeek:
		from := StartOfWeek(now)
		return from, from.AddDate(0, 0, 7), nil
	case config.FilterMonth:
		from := StartOfMonth(now)
		return from, from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
}

// Days lists the calendar days covered by filter at now.
func Days(filter string, now time.Time) ([]time.Time, error) {
	from, to, err := Range(filter, now)
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

// DateKey formats t as YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// FilterSessions keeps sessions completed in [from, to).
func FilterSessions(sessions []models.Session, from, to time.Time) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if !s.CompletedAt.Before(from) && s.CompletedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

// Total sums the worked seconds of sessions.
func Total(sessions []models.Session) int {
	total := 0
	for _, s := range sessions {
		total += s.DurationSec
	}
	return total
}

// TodayFocus returns the seconds worked on now's calendar day.
func TodayFocus(sessions []models.Session, now time.Time) int {
	from := StartOfDay(now)
	return Total(FilterSessions(sessions, from, from.AddDate(0, 0, 1)))
}

// ProgressRatio is worked/target clamped to [0, 1]. A zero target yields 0.
func ProgressRatio(workedSeconds, targetMinutes int) float64 {
	if targetMinutes <= 0 || workedSeconds <= 0 {
		return 0
	}
	r := float64(workedSeconds) / float64(targetMinutes*60)
	if r > 1 {
		return 1
	}
	return r
}

// GroupByTask totals sessions per task, largest first. Sessions whose task is
// not in tasks are reported under DeletedTaskName.
func GroupByTask(sessions []models.Session, tasks []models.Task) []models.TaskTotal {
	names := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}
	index := make(map[int64]int)
	var out []models.TaskTotal
	for _, s := range sessions {
		i, ok := index[s.TaskID]
		if !ok {
			name, known := names[s.TaskID]
			if !known {
				name = DeletedTaskName
			}
			i = len(out)
			index[s.TaskID] = i
			out = append(out, models.TaskTotal{TaskID: s.TaskID, TaskName: name})
		}
		out[i].Seconds += s.DurationSec
		out[i].Sessions++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seconds > out[j].Seconds })
	return out
}

// DeletedTaskName labels time whose task no longer exists.
const DeletedTaskName = "(deleted task)"

// GroupByDay totals sessions per day for every day of filter at now,
// including empty days.
func GroupByDay(sessions []models.Session, filter string, now time.Time) ([]models.DayTotal, error) {
	days, err := Days(filter, now)
	if err != nil {
		return nil, err
	}
	loc := now.Location()
	totals := make(map[string]int)
	for _, s := range sessions {
		totals[DateKey(s.CompletedAt.In(loc))] += s.DurationSec
	}
	out := make([]models.DayTotal, 0, len(days))
	for _, d := range days {
		key := DateKey(d)
		out = append(out, models.DayTotal{Date: key, Seconds: totals[key]})
	}
	return out, nil
}
