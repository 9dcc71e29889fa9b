package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithTasks(2).WithSessions(2, 900, fixedNow)
	src := b.Build()
	if _, err := src.SetDailyTarget(ctx, "2026-03-02", 90); err != nil {
		t.Fatalf("SetDailyTarget failed: %v", err)
	}
	if err := src.SetSetting(ctx, "sound_enabled", "true"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	snap, err := src.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}
	if len(snap.Tasks) != 2 || len(snap.Sessions) != 4 || len(snap.DailyTargets) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d tasks, %d sessions, %d targets",
			len(snap.Tasks), len(snap.Sessions), len(snap.DailyTargets))
	}
	if _, ok := snap.Settings["created_at"]; ok {
		t.Fatalf("created_at belongs in metadata, not settings")
	}
	if snap.Metadata.ExportedAt == nil {
		t.Fatalf("expected exportedAt to be set")
	}

	dst := setupTestDB(t, ctx)
	result, err := dst.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if result.TasksAdded != 2 || result.SessionsAdded != 4 || result.TargetsSet != 1 {
		t.Fatalf("unexpected import result %+v", result)
	}

	again, err := dst.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("second ImportSnapshot failed: %v", err)
	}
	if again.TasksAdded != 0 || again.SessionsAdded != 0 || again.SessionsSkipped != 4 {
		t.Fatalf("expected idempotent re-import, got %+v", again)
	}

	sessions, err := dst.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(sessions))
	}
	if v, ok := dst.GetSetting(ctx, "sound_enabled"); !ok || v != "true" {
		t.Fatalf("expected imported setting, got %q", v)
	}
}

func TestImportLegacyFile(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	raw := `{
	  "tasks": [{"id": 1700000000000, "name": "Thesis", "description": null, "defaultDuration": 45,
	             "color": "#10B981", "isArchived": false,
	             "createdAt": "2024-01-01T08:00:00.000Z", "updatedAt": "2024-01-01T08:00:00.000Z"}],
	  "sessions": [
	    {"id": 1700000001000, "taskId": 1700000000000, "duration": 2700, "plannedDuration": 2700,
	     "sessionType": "work", "completedAt": "2024-01-01T09:00:00.000Z", "createdAt": "2024-01-01T09:00:00.000Z"},
	    {"id": 1700000002000, "taskId": 42, "duration": 60, "plannedDuration": null,
	     "sessionType": "work", "completedAt": "2024-01-01T10:00:00.000Z", "createdAt": "2024-01-01T10:00:00.000Z"}
	  ],
	  "dailyTargets": {"2024-01-01": {"targetMinutes": 120, "targetDate": "2024-01-01",
	                   "createdAt": "2024-01-01T07:00:00.000Z", "updatedAt": "2024-01-01T07:00:00.000Z"}},
	  "settings": {"defaultWorkDuration": 25, "soundEnabled": true},
	  "metadata": {"created": "2024-01-01T07:00:00.000Z", "version": "1.0.0", "lastSaved": "2024-01-01T10:00:00.000Z"}
	}`
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal legacy file: %v", err)
	}

	result, err := db.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if result.TasksAdded != 1 || result.SessionsAdded != 1 || result.SessionsSkipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	tasks, err := db.ListTasks(ctx, true)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].UID != LegacyUID("task", 1700000000000) || tasks[0].DefaultMinutes != 45 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	if v, _ := db.GetSetting(ctx, "defaultWorkDuration"); v != "25" {
		t.Fatalf("expected numeric setting stored as 25, got %q", v)
	}

	second, err := db.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("second ImportSnapshot failed: %v", err)
	}
	if second.TasksAdded != 0 || second.SessionsAdded != 0 {
		t.Fatalf("expected no duplicates on re-import, got %+v", second)
	}
}

func TestImportMergeNewerTaskWins(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx, WithNow(func() time.Time { return fixedNow }))
	task, err := db.AddTask(ctx, models.Task{Name: "Old name"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	snap := models.NewSnapshot("1.0.0", fixedNow)
	snap.Tasks = []models.SnapshotTask{
		{UID: task.UID, Name: "Stale name", CreatedAt: fixedNow, UpdatedAt: fixedNow.Add(-time.Hour)},
	}
	result, err := db.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if result.TasksUpdated != 0 {
		t.Fatalf("older copy must not overwrite, got %+v", result)
	}

	snap.Tasks[0].Name = "New name"
	snap.Tasks[0].UpdatedAt = fixedNow.Add(time.Hour)
	result, err = db.ImportSnapshot(ctx, snap, false)
	if err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}
	if result.TasksUpdated != 1 {
		t.Fatalf("expected one update, got %+v", result)
	}
	got, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Name != "New name" {
		t.Fatalf("expected merged name, got %q", got.Name)
	}
}

func TestImportReplace(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithTasks(3).WithSessions(1, 60, fixedNow).Build()

	snap := models.NewSnapshot("1.0.0", fixedNow)
	snap.Tasks = []models.SnapshotTask{{ID: 1, Name: "Only"}}
	if _, err := db.ImportSnapshot(ctx, snap, true); err != nil {
		t.Fatalf("ImportSnapshot(replace) failed: %v", err)
	}
	tasks, err := db.ListTasks(ctx, true)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Only" {
		t.Fatalf("expected only the imported task, got %+v", tasks)
	}
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected sessions cleared, got %d", len(sessions))
	}
}

func TestImportRejectsInvalidTask(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithTask("Keep me").Build()
	snap := models.NewSnapshot("1.0.0", fixedNow)
	snap.Tasks = []models.SnapshotTask{{ID: 1, Name: "fine"}, {ID: 2, Name: ""}}
	if _, err := db.ImportSnapshot(ctx, snap, true); err == nil {
		t.Fatalf("expected error for empty task name")
	}
	tasks, err := db.ListTasks(ctx, true)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Keep me" {
		t.Fatalf("expected failed import to roll back, got %+v", tasks)
	}
}
