package config

import "time"

// Timer durations.
const (
	DefaultWorkDuration = 25 * time.Minute
	BreakDuration       = 5 * time.Minute
	TransitionDuration  = 3 * time.Second
	TickInterval        = time.Second
)

// SkipThreshold is the share of a planned session that must be worked
// before it can be ended early with partial credit.
const SkipThreshold = 0.75

// History filters.
const (
	FilterDay   = "day"
	FilterWeek  = "week"
	FilterMonth = "month"
)

// Session kinds.
const (
	SessionKindWork   = "work"
	SessionKindManual = "manual"
)

// Daily summary and day rollover.
const (
	SummaryHour      = 23
	DayCheckInterval = 30 * time.Second
	AutoRefreshEvery = time.Minute
)

// Application settings.
const (
	AppName        = "deepwork"
	DBFileName     = "deepwork.db"
	LogFileName    = "deepwork.log"
	ConfigFileName = "config.yaml"
	MirrorFileName = "deepwork-data.json"
	SnapshotFormat = "1.0.0"
	DefaultColor   = "#3B82F6"
)

// Setting keys.
const (
	SettingLastSummaryShown    = "last_summary_shown"
	SettingSoundEnabled        = "sound_enabled"
	SettingNotificationEnabled = "notification_enabled"
	SettingDefaultWorkMinutes  = "default_work_minutes"
)
