// Package mirror copies the local store to external destinations: a JSON file
// that other tools can edit, and a Google Sheets spreadsheet.
package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/akyairhashvil/deepwork/internal/models"
)

var (
	// ErrNoData means the destination holds nothing to pull yet.
	ErrNoData = errors.New("mirror has no data")
	// ErrSheetsAuth means the spreadsheet rejected the access token.
	ErrSheetsAuth = errors.New("sheets authorization failed")
)

// Mirror is an external copy of the app data.
//
//go:generate mockgen -source=mirror.go -destination=mock_mirror_test.go -package=mirror
type Mirror interface {
	Name() string
	Push(ctx context.Context, snap models.Snapshot) error
	Pull(ctx context.Context) (models.Snapshot, error)
}

// MirrorError ties a failure to the backend that produced it.
type MirrorError struct {
	Backend string
	Err     error
}

func (e *MirrorError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("mirror %s: %v", e.Backend, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }

func wrap(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &MirrorError{Backend: backend, Err: err}
}
