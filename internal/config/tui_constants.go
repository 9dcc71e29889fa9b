package config

// Layout constants.
const (
	// MinChartWidth is the narrowest history chart the home view draws.
	MinChartWidth = 20

	// MaxChartBars limits the number of bars in the history chart.
	MaxChartBars = 12

	// CompactModeThreshold triggers compact rendering below this width.
	CompactModeThreshold = 60

	// ProgressBarWidth is the preferred width of the daily target bar.
	ProgressBarWidth = 30
)

// Display limits.
const (
	// MaxVisibleTasks limits tasks shown before scrolling.
	MaxVisibleTasks = 15

	// TruncationSuffix appended to truncated strings.
	TruncationSuffix = "..."
)

// Input constraints.
const (
	// MaxTaskNameLength is the maximum task name length.
	MaxTaskNameLength = 100

	// MaxDescriptionLength is the maximum description length.
	MaxDescriptionLength = 500

	// MaxSessionMinutes caps a single planned or manual session.
	MaxSessionMinutes = 600

	// MaxTargetMinutes caps the daily target (a full day).
	MaxTargetMinutes = 1440
)
