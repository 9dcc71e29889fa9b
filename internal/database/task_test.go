package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/util"
)

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	task, err := db.AddTask(ctx, models.Task{Name: "  Write report  ", Description: util.Ptr("Q1 numbers")})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if task.ID == 0 || task.UID == "" {
		t.Fatalf("expected id and uid, got %+v", task)
	}
	if task.Name != "Write report" {
		t.Fatalf("expected trimmed name, got %q", task.Name)
	}
	if task.DefaultMinutes != 25 || task.Color != config.DefaultColor {
		t.Fatalf("expected defaults, got %d %q", task.DefaultMinutes, task.Color)
	}

	got, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.UID != task.UID || got.Description == nil || *got.Description != "Q1 numbers" {
		t.Fatalf("unexpected stored task %+v", got)
	}

	updated, err := db.UpdateTask(ctx, task.ID, models.TaskUpdate{
		Name:           util.Ptr("Write annual report"),
		DefaultMinutes: util.Ptr(50),
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Name != "Write annual report" || updated.DefaultMinutes != 50 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Description == nil || *updated.Description != "Q1 numbers" {
		t.Fatalf("expected description unchanged, got %v", updated.Description)
	}
}

func TestAddTaskValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	cases := []models.Task{
		{Name: "   "},
		{Name: strings.Repeat("x", config.MaxTaskNameLength+1)},
		{Name: "ok", Description: util.Ptr(strings.Repeat("d", config.MaxDescriptionLength+1))},
		{Name: "ok", DefaultMinutes: -5},
	}
	for _, tc := range cases {
		if _, err := db.AddTask(ctx, tc); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", tc, err)
		}
	}
}

func TestGetTaskNotFound(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	_, err := db.GetTask(ctx, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.ID != 999 || opErr.Resource != EntityTask {
		t.Fatalf("expected OpError for task 999, got %#v", err)
	}
}

func TestToggleTaskArchive(t *testing.T) {
	b := NewTestDataBuilder(t).WithTasks(2)
	db := b.Build()
	ctx := context.Background()
	id := b.PrimaryTaskID()

	archived, err := db.ToggleTaskArchive(ctx, id)
	if err != nil {
		t.Fatalf("ToggleTaskArchive failed: %v", err)
	}
	if !archived {
		t.Fatalf("expected task to be archived")
	}

	active, err := db.ListTasks(ctx, false)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active task, got %d", len(active))
	}
	all, err := db.ListTasks(ctx, true)
	if err != nil {
		t.Fatalf("ListTasks(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}
	archivedList, err := db.ListArchivedTasks(ctx)
	if err != nil {
		t.Fatalf("ListArchivedTasks failed: %v", err)
	}
	if len(archivedList) != 1 || archivedList[0].ID != id {
		t.Fatalf("expected archived task %d, got %+v", id, archivedList)
	}

	archived, err = db.ToggleTaskArchive(ctx, id)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if archived {
		t.Fatalf("expected task to be restored")
	}

	if _, err := db.ToggleTaskArchive(ctx, 4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskCascadesSessions(t *testing.T) {
	b := NewTestDataBuilder(t).WithTasks(2).WithSessions(3, 600, fixedNow)
	db := b.Build()
	ctx := context.Background()
	ids := b.TaskIDs()

	if err := db.DeleteTask(ctx, ids[0]); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 remaining sessions, got %d", len(sessions))
	}
	for _, s := range sessions {
		if s.TaskID == ids[0] {
			t.Fatalf("session %d still references deleted task", s.ID)
		}
	}
	if err := db.DeleteTask(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
