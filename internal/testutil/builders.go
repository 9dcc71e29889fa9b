package testutil

import (
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/util"
)

// TaskBuilder provides fluent API for creating test tasks.
type TaskBuilder struct {
	task models.Task
}

func NewTask() *TaskBuilder {
	return &TaskBuilder{
		task: models.Task{
			Name:           "Test Task",
			DefaultMinutes: int(config.DefaultWorkDuration / time.Minute),
			Color:          config.DefaultColor,
			CreatedAt:      time.Now(),
		},
	}
}

func (b *TaskBuilder) WithID(id int64) *TaskBuilder {
	b.task.ID = id
	return b
}

func (b *TaskBuilder) WithName(name string) *TaskBuilder {
	b.task.Name = name
	return b
}

func (b *TaskBuilder) WithDescription(d string) *TaskBuilder {
	b.task.Description = util.Ptr(d)
	return b
}

func (b *TaskBuilder) WithMinutes(m int) *TaskBuilder {
	b.task.DefaultMinutes = m
	return b
}

func (b *TaskBuilder) Archived() *TaskBuilder {
	b.task.Archived = true
	return b
}

func (b *TaskBuilder) Build() models.Task {
	return b.task
}

// SessionBuilder provides fluent API for creating test sessions.
type SessionBuilder struct {
	session models.Session
}

func NewSession() *SessionBuilder {
	return &SessionBuilder{
		session: models.Session{
			TaskID:      1,
			DurationSec: int(config.DefaultWorkDuration / time.Second),
			Kind:        models.SessionWork,
			CompletedAt: time.Now(),
		},
	}
}

func (b *SessionBuilder) ForTask(id int64) *SessionBuilder {
	b.session.TaskID = id
	return b
}

func (b *SessionBuilder) WithDuration(d time.Duration) *SessionBuilder {
	b.session.DurationSec = int(d / time.Second)
	return b
}

func (b *SessionBuilder) WithPlanned(d time.Duration) *SessionBuilder {
	b.session.PlannedSec = util.Ptr(int(d / time.Second))
	return b
}

func (b *SessionBuilder) At(t time.Time) *SessionBuilder {
	b.session.CompletedAt = t
	return b
}

func (b *SessionBuilder) Manual() *SessionBuilder {
	b.session.Kind = models.SessionManual
	return b
}

func (b *SessionBuilder) Build() models.Session {
	return b.session
}
