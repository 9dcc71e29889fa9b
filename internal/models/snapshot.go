package models

import (
	"fmt"
	"time"
)

// Snapshot is the portable form of all app data used by export, import and
// the file mirror. Field names follow the deepwork-data.json layout.
type Snapshot struct {
	Tasks        []SnapshotTask            `json:"tasks"`
	Sessions     []SnapshotSession         `json:"sessions"`
	DailyTargets map[string]SnapshotTarget `json:"dailyTargets"`
	Settings     map[string]any            `json:"settings"`
	Metadata     SnapshotMetadata          `json:"metadata"`
}

type SnapshotTask struct {
	ID              int64     `json:"id"`
	UID             string    `json:"uid,omitempty"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	DefaultDuration int       `json:"defaultDuration"`
	Color           string    `json:"color"`
	IsArchived      bool      `json:"isArchived"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type SnapshotSession struct {
	ID              int64     `json:"id"`
	UID             string    `json:"uid,omitempty"`
	TaskID          int64     `json:"taskId"`
	TaskUID         string    `json:"taskUid,omitempty"`
	Duration        int       `json:"duration"`
	PlannedDuration *int      `json:"plannedDuration"`
	SessionType     string    `json:"sessionType"`
	CompletedAt     time.Time `json:"completedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SnapshotTarget struct {
	TargetMinutes int       `json:"targetMinutes"`
	TargetDate    string    `json:"targetDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type SnapshotMetadata struct {
	Created    time.Time  `json:"created"`
	Version    string     `json:"version"`
	LastSaved  time.Time  `json:"lastSaved"`
	ExportedAt *time.Time `json:"exportedAt,omitempty"`
}

// NewSnapshot returns an empty snapshot stamped with now.
func NewSnapshot(version string, now time.Time) Snapshot {
	return Snapshot{
		Tasks:        []SnapshotTask{},
		Sessions:     []SnapshotSession{},
		DailyTargets: map[string]SnapshotTarget{},
		Settings:     map[string]any{},
		Metadata: SnapshotMetadata{
			Created:   now.UTC(),
			Version:   version,
			LastSaved: now.UTC(),
		},
	}
}

// SettingString renders a settings value the way the settings table stores it.
func SettingString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
