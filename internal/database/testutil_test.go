package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

type TestDataBuilder struct {
	t          *testing.T
	ctx        context.Context
	db         *Database
	taskIDs    []int64
	sessionIDs []int64
}

func NewTestDataBuilder(t *testing.T) *TestDataBuilder {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	return &TestDataBuilder{t: t, ctx: ctx, db: db}
}

func (b *TestDataBuilder) WithTask(name string) *TestDataBuilder {
	b.t.Helper()
	task, err := b.db.AddTask(b.ctx, models.Task{Name: name})
	if err != nil {
		b.t.Fatalf("AddTask failed: %v", err)
	}
	b.taskIDs = append(b.taskIDs, task.ID)
	return b
}

func (b *TestDataBuilder) WithTasks(count int) *TestDataBuilder {
	b.t.Helper()
	for i := 0; i < count; i++ {
		b.WithTask(fmt.Sprintf("Task %d", i+1))
	}
	return b
}

// WithSessions records perTask sessions of seconds each against every task,
// completed one minute apart starting at start.
func (b *TestDataBuilder) WithSessions(perTask, seconds int, start time.Time) *TestDataBuilder {
	b.t.Helper()
	if len(b.taskIDs) == 0 {
		b.WithTask("Default")
	}
	at := start
	for _, taskID := range b.taskIDs {
		for i := 0; i < perTask; i++ {
			s, err := b.db.AddSession(b.ctx, models.Session{TaskID: taskID, DurationSec: seconds, CompletedAt: at})
			if err != nil {
				b.t.Fatalf("AddSession failed: %v", err)
			}
			b.sessionIDs = append(b.sessionIDs, s.ID)
			at = at.Add(time.Minute)
		}
	}
	return b
}

func (b *TestDataBuilder) Build() *Database {
	return b.db
}

func (b *TestDataBuilder) TaskIDs() []int64 {
	return b.taskIDs
}

func (b *TestDataBuilder) PrimaryTaskID() int64 {
	if len(b.taskIDs) == 0 {
		return 0
	}
	return b.taskIDs[0]
}
