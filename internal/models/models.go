package models

import "time"

// SessionKind distinguishes timer-recorded sessions from manual entries.
type SessionKind string

const (
	SessionWork   SessionKind = "work"
	SessionManual SessionKind = "manual"
)

// Task is an item of work that focus sessions are attributed to.
type Task struct {
	ID             int64
	UID            string
	Name           string
	Description    *string
	DefaultMinutes int
	Color          string
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Session is one recorded block of worked time.
type Session struct {
	ID          int64
	UID         string
	TaskID      int64
	DurationSec int
	PlannedSec  *int // nil for untimed and manual sessions
	Kind        SessionKind
	CompletedAt time.Time
	CreatedAt   time.Time
}

// Duration returns the worked time.
func (s Session) Duration() time.Duration {
	return time.Duration(s.DurationSec) * time.Second
}

// DailyTarget is the focus goal for one calendar day.
type DailyTarget struct {
	Date          string // YYYY-MM-DD
	TargetMinutes int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Target returns the target as a duration.
func (d DailyTarget) Target() time.Duration {
	return time.Duration(d.TargetMinutes) * time.Minute
}

// TaskUpdate carries the editable fields of a task. Nil fields are left unchanged.
type TaskUpdate struct {
	Name           *string
	Description    *string
	DefaultMinutes *int
	Color          *string
}

// TaskTotal is the worked time attributed to a task over a range.
type TaskTotal struct {
	TaskID   int64
	TaskName string
	Seconds  int
	Sessions int
}

// DayTotal is the worked time on one calendar day.
type DayTotal struct {
	Date    string
	Seconds int
}
