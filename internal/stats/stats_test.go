package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/testutil"
)

// Wednesday.
var now = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

func session(taskID int64, seconds int, at time.Time) models.Session {
	return testutil.NewSession().ForTask(taskID).WithDuration(time.Duration(seconds) * time.Second).At(at).Build()
}

func TestRange(t *testing.T) {
	tests := []struct {
		filter   string
		from, to time.Time
	}{
		{config.FilterDay, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{config.FilterWeek, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)},
		{config.FilterMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			from, to, err := Range(tt.filter, now)
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}

	_, _, err := Range("year", now)
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestStartOfWeekOnSunday(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(monday))
}

func TestDaysCount(t *testing.T) {
	week, err := Days(config.FilterWeek, now)
	require.NoError(t, err)
	assert.Len(t, week, 7)
	month, err := Days(config.FilterMonth, now)
	require.NoError(t, err)
	assert.Len(t, month, 31)
	day, err := Days(config.FilterDay, now)
	require.NoError(t, err)
	assert.Len(t, day, 1)
}

func TestTodayFocusAndProgress(t *testing.T) {
	sessions := []models.Session{
		session(1, 1500, now.Add(-time.Hour)),
		session(2, 600, now.Add(-2*time.Hour)),
		session(1, 900, now.AddDate(0, 0, -1)),
	}
	assert.Equal(t, 2100, TodayFocus(sessions, now))

	assert.InDelta(t, 0.5, ProgressRatio(1800, 60), 1e-9)
	assert.Equal(t, 1.0, ProgressRatio(7200, 60))
	assert.Equal(t, 0.0, ProgressRatio(1800, 0))
	assert.Equal(t, 0.0, ProgressRatio(0, 60))
}

func TestGroupByTask(t *testing.T) {
	tasks := []models.Task{
		testutil.NewTask().WithID(1).WithName("Write").Build(),
		testutil.NewTask().WithID(2).WithName("Read").Build(),
	}
	sessions := []models.Session{
		session(2, 300, now),
		session(1, 1500, now),
		session(3, 60, now),
		session(1, 600, now),
	}
	got := GroupByTask(sessions, tasks)
	want := []models.TaskTotal{
		{TaskID: 1, TaskName: "Write", Seconds: 2100, Sessions: 2},
		{TaskID: 2, TaskName: "Read", Seconds: 300, Sessions: 1},
		{TaskID: 3, TaskName: DeletedTaskName, Seconds: 60, Sessions: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GroupByTask mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByDayIncludesEmptyDays(t *testing.T) {
	sessions := []models.Session{
		session(1, 1500, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		session(1, 300, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)),
		session(1, 999, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)),
	}
	got, err := GroupByDay(sessions, config.FilterWeek, now)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, models.DayTotal{Date: "2026-03-02", Seconds: 1500}, got[0])
	assert.Equal(t, models.DayTotal{Date: "2026-03-03", Seconds: 0}, got[1])
	assert.Equal(t, models.DayTotal{Date: "2026-03-04", Seconds: 300}, got[2])
}

func TestDailySummary(t *testing.T) {
	tasks := []models.Task{{ID: 1, Name: "Write"}}
	sessions := []models.Session{
		session(1, 3600, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)),
		session(1, 1800, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)),
		session(1, 1800, time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)),
	}
	s, err := DailySummary("2026-03-04", time.UTC, sessions, tasks, 90)
	require.NoError(t, err)
	assert.Equal(t, 5400, s.TotalSeconds)
	assert.Equal(t, 2, s.SessionCount)
	assert.True(t, s.TargetMet)
	assert.Equal(t, 1.0, s.Progress())
	require.Len(t, s.Tasks, 1)

	s, err = DailySummary("2026-03-04", time.UTC, sessions, tasks, 0)
	require.NoError(t, err)
	assert.False(t, s.TargetMet, "no target is never met")

	_, err = DailySummary("yesterday", time.UTC, sessions, tasks, 0)
	assert.Error(t, err)
}

func TestShouldShowSummary(t *testing.T) {
	morning := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 4, 23, 10, 0, 0, time.UTC)

	date, ok := ShouldShowSummary(morning, "2026-03-03")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-03", date, "new day shows yesterday")

	date, ok = ShouldShowSummary(late, "2026-03-03")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-04", date, "after 23:00 shows today")

	_, ok = ShouldShowSummary(late, "2026-03-04")
	assert.False(t, ok, "already shown today")
}

func TestDayDetector(t *testing.T) {
	d := NewDayDetector(time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC))
	assert.False(t, d.Observe(time.Date(2026, 3, 4, 23, 59, 30, 0, time.UTC)))
	assert.True(t, d.Observe(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-05", d.Current())
	assert.False(t, d.Observe(time.Date(2026, 3, 5, 0, 0, 30, 0, time.UTC)))
}

func TestHeatmapLevels(t *testing.T) {
	sessions := []models.Session{
		session(1, 7200, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		session(1, 1200, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)),
		session(1, 4000, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)),
	}
	targets := map[string]int{"2026-03-02": 60, "2026-03-03": 60}
	days, err := Heatmap(sessions, targets, config.FilterWeek, now)
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, LevelTargetMet, days[0].Level)
	assert.Equal(t, 1.0, days[0].Intensity)
	assert.Equal(t, LevelBelowTarget, days[1].Level)
	assert.Equal(t, LevelSolid, days[2].Level)
	assert.Equal(t, LevelNone, days[3].Level)
	assert.Equal(t, 0.0, days[3].Intensity)

	current, longest := Streak(days[:3])
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
	current, longest = Streak(days)
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestHeatmapShortDay(t *testing.T) {
	sessions := []models.Session{session(1, 600, now)}
	days, err := Heatmap(sessions, nil, config.FilterDay, now)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, LevelShort, days[0].Level)
	assert.InDelta(t, 0.2, days[0].Intensity, 1e-9)
}
