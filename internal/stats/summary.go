package stats

import (
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
)

// Summary describes one day of work.
type Summary struct {
	Date          string
	TotalSeconds  int
	SessionCount  int
	TargetMinutes int
	TargetMet     bool
	Tasks         []models.TaskTotal
}

// Progress returns the share of the target reached, clamped to [0, 1].
func (s Summary) Progress() float64 {
	return ProgressRatio(s.TotalSeconds, s.TargetMinutes)
}

// DailySummary builds the summary of day from all sessions. day is
// interpreted in loc.
func DailySummary(day string, loc *time.Location, sessions []models.Session, tasks []models.Task, targetMinutes int) (Summary, error) {
	start, err := time.ParseInLocation(DateLayout, day, loc)
	if err != nil {
		return Summary{}, err
	}
	daySessions := FilterSessions(sessions, start, start.AddDate(0, 0, 1))
	total := Total(daySessions)
	return Summary{
		Date:          day,
		TotalSeconds:  total,
		SessionCount:  len(daySessions),
		TargetMinutes: targetMinutes,
		TargetMet:     targetMinutes > 0 && total >= targetMinutes*60,
		Tasks:         GroupByTask(daySessions, tasks),
	}, nil
}

// ShouldShowSummary decides whether the daily summary is due. lastShown is
// the date key of the last time it was shown. From SummaryHour on it covers
// today; earlier on a new day it covers yesterday.
func ShouldShowSummary(now time.Time, lastShown string) (string, bool) {
	today := DateKey(now)
	if lastShown == today {
		return "", false
	}
	if now.Hour() >= config.SummaryHour {
		return today, true
	}
	return DateKey(StartOfDay(now).AddDate(0, 0, -1)), true
}

// DayDetector reports when the calendar day changes between observations.
type DayDetector struct {
	current string
}

func NewDayDetector(now time.Time) *DayDetector {
	return &DayDetector{current: DateKey(now)}
}

// Observe records now and reports whether its day differs from the last one
// seen.
func (d *DayDetector) Observe(now time.Time) bool {
	key := DateKey(now)
	if key == d.current {
		return false
	}
	d.current = key
	return true
}

func (d *DayDetector) Current() string { return d.current }
