package timer

import (
	"context"
	"fmt"

	"github.com/akyairhashvil/deepwork/internal/models"
)

// SaveResult persists a finished session through saver. Results without
// worked time are not stored.
func SaveResult(ctx context.Context, saver SessionSaver, r Result) (models.Session, error) {
	if r.ElapsedSeconds <= 0 {
		return models.Session{}, fmt.Errorf("save session for task %d: no time worked", r.Task.ID)
	}
	saved, err := saver.AddSession(ctx, r.Record())
	if err != nil {
		return models.Session{}, fmt.Errorf("save session for task %d: %w", r.Task.ID, err)
	}
	return saved, nil
}
