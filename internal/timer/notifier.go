package timer

import (
	"context"
	"time"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// Notifier grabs the user's attention when a phase ends.
//
//go:generate mockgen -source=notifier.go -destination=mock_notifier_test.go -package=timer
type Notifier interface {
	WorkComplete(task Task, worked time.Duration)
	BreakComplete(task Task)
}

// SessionSaver persists the value handed off when a session ends.
type SessionSaver interface {
	AddSession(ctx context.Context, s models.Session) (models.Session, error)
}

// NopNotifier ignores every notification.
type NopNotifier struct{}

func (NopNotifier) WorkComplete(Task, time.Duration) {}
func (NopNotifier) BreakComplete(Task)               {}
