package stats

import (
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// Level classifies a day for the history heatmap. Short and Solid apply to
// days without a target: under an hour and an hour or more respectively.
type Level int

const (
	LevelNone Level = iota
	LevelShort
	LevelSolid
	LevelBelowTarget
	LevelTargetMet
)

// HeatDay is one cell of the history heatmap.
type HeatDay struct {
	Date          string
	Seconds       int
	Sessions      int
	TargetMinutes int
	Level         Level
	Intensity     float64
}

// Heatmap classifies each day of filter at now. targets maps date keys to
// target minutes.
func Heatmap(sessions []models.Session, targets map[string]int, filter string, now time.Time) ([]HeatDay, error) {
	totals, err := GroupByDay(sessions, filter, now)
	if err != nil {
		return nil, err
	}
	loc := now.Location()
	counts := make(map[string]int)
	for _, s := range sessions {
		counts[DateKey(s.CompletedAt.In(loc))]++
	}
	out := make([]HeatDay, 0, len(totals))
	for _, d := range totals {
		h := HeatDay{Date: d.Date, Seconds: d.Seconds, Sessions: counts[d.Date], TargetMinutes: targets[d.Date]}
		h.Level, h.Intensity = classify(h.Seconds, h.TargetMinutes)
		out = append(out, h)
	}
	return out, nil
}

func classify(seconds, targetMinutes int) (Level, float64) {
	minutes := float64(seconds) / 60
	hours := minutes / 60
	var level Level
	var intensity float64
	switch {
	case targetMinutes > 0 && minutes >= float64(targetMinutes):
		level, intensity = LevelTargetMet, hours/(float64(targetMinutes)/60)
	case targetMinutes > 0:
		level, intensity = LevelBelowTarget, max(0.3, minutes/float64(targetMinutes))
	case hours >= 1:
		level, intensity = LevelSolid, min(hours/3, 1)
	case seconds > 0:
		level, intensity = LevelShort, max(0.2, minutes/60)
	default:
		return LevelNone, 0
	}
	return level, max(0.2, min(intensity, 1))
}

// Streak returns the current and longest runs of consecutive days with work.
func Streak(days []HeatDay) (current, longest int) {
	run := 0
	for _, d := range days {
		if d.Seconds > 0 {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return run, longest
}
