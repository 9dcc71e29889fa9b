package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetsBackend = "sheets"
	tasksRange    = "Tasks!A:C"
	sessionsRange = "Sessions!A:D"
	tasksUIDs     = "Tasks!A:A"
	sessionsUIDs  = "Sessions!A:A"
)

var (
	taskHeader    = []interface{}{"uid", "name", "createdAt"}
	sessionHeader = []interface{}{"uid", "taskUid", "duration", "completedAt"}
)

// SheetsMirror appends tasks and sessions to a spreadsheet with "Tasks" and
// "Sessions" tabs. Rows are keyed by uid in column A and never rewritten.
type SheetsMirror struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
	now           func() time.Time
}

// NewSheetsMirror connects with a bearer token. Extra options are passed to
// the Sheets client.
func NewSheetsMirror(ctx context.Context, spreadsheetID, token string, logger *zap.Logger, opts ...option.ClientOption) (*SheetsMirror, error) {
	if spreadsheetID == "" {
		return nil, wrap(sheetsBackend, errors.New("spreadsheet id is required"))
	}
	if token == "" {
		return nil, wrap(sheetsBackend, ErrSheetsAuth)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, wrap(sheetsBackend, err)
	}
	return &SheetsMirror{svc: svc, spreadsheetID: spreadsheetID, logger: logger, now: time.Now}, nil
}

func (m *SheetsMirror) Name() string { return sheetsBackend }

// Push appends the tasks and sessions of snap that the sheet does not have yet.
func (m *SheetsMirror) Push(ctx context.Context, snap models.Snapshot) error {
	taskUIDs, err := m.existing(ctx, tasksUIDs)
	if err != nil {
		return wrap(sheetsBackend, err)
	}
	var taskRows [][]interface{}
	if len(taskUIDs) == 0 {
		taskRows = append(taskRows, taskHeader)
	}
	for _, t := range snap.Tasks {
		if t.UID == "" || taskUIDs[t.UID] {
			continue
		}
		taskRows = append(taskRows, []interface{}{t.UID, t.Name, formatStamp(t.CreatedAt)})
	}

	sessionUIDs, err := m.existing(ctx, sessionsUIDs)
	if err != nil {
		return wrap(sheetsBackend, err)
	}
	var sessionRows [][]interface{}
	if len(sessionUIDs) == 0 {
		sessionRows = append(sessionRows, sessionHeader)
	}
	for _, s := range snap.Sessions {
		if s.UID == "" || sessionUIDs[s.UID] {
			continue
		}
		sessionRows = append(sessionRows, []interface{}{s.UID, s.TaskUID, s.Duration, formatStamp(s.CompletedAt)})
	}

	if err := m.appendRows(ctx, tasksRange, taskRows, len(taskUIDs) == 0); err != nil {
		return wrap(sheetsBackend, err)
	}
	if err := m.appendRows(ctx, sessionsRange, sessionRows, len(sessionUIDs) == 0); err != nil {
		return wrap(sheetsBackend, err)
	}
	return nil
}

// Pull rebuilds a snapshot from the sheet rows. Only the mirrored columns
// survive the round trip.
func (m *SheetsMirror) Pull(ctx context.Context) (models.Snapshot, error) {
	snap := models.NewSnapshot(config.SnapshotFormat, m.now())

	taskRows, err := m.rows(ctx, tasksRange)
	if err != nil {
		return models.Snapshot{}, wrap(sheetsBackend, err)
	}
	for _, row := range skipHeader(taskRows) {
		uid, name := cell(row, 0), cell(row, 1)
		if uid == "" || name == "" {
			continue
		}
		created := parseStamp(cell(row, 2))
		snap.Tasks = append(snap.Tasks, models.SnapshotTask{
			UID:       uid,
			Name:      name,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}

	sessionRows, err := m.rows(ctx, sessionsRange)
	if err != nil {
		return models.Snapshot{}, wrap(sheetsBackend, err)
	}
	for _, row := range skipHeader(sessionRows) {
		uid, taskUID := cell(row, 0), cell(row, 1)
		duration, convErr := strconv.Atoi(cell(row, 2))
		if uid == "" || taskUID == "" || convErr != nil {
			continue
		}
		completed := parseStamp(cell(row, 3))
		snap.Sessions = append(snap.Sessions, models.SnapshotSession{
			UID:         uid,
			TaskUID:     taskUID,
			Duration:    duration,
			SessionType: string(models.SessionWork),
			CompletedAt: completed,
			CreatedAt:   completed,
		})
	}
	if len(snap.Tasks) == 0 && len(snap.Sessions) == 0 {
		return models.Snapshot{}, wrap(sheetsBackend, ErrNoData)
	}
	return snap, nil
}

func (m *SheetsMirror) rows(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	return resp.Values, nil
}

func (m *SheetsMirror) existing(ctx context.Context, rng string) (map[string]bool, error) {
	rows, err := m.rows(ctx, rng)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		if uid := cell(row, 0); uid != "" {
			out[uid] = true
		}
	}
	return out, nil
}

func (m *SheetsMirror) appendRows(ctx context.Context, rng string, rows [][]interface{}, onlyHeader bool) error {
	if len(rows) == 0 || (onlyHeader && len(rows) == 1) {
		return nil
	}
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	m.logger.Info("sheet rows appended", zap.String("range", rng), zap.Int("rows", len(rows)))
	return nil
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %v", ErrSheetsAuth, err)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", ErrSheetsAuth, err)
	}
	return err
}

func skipHeader(rows [][]interface{}) [][]interface{} {
	if len(rows) > 0 && cell(rows[0], 0) == "uid" {
		return rows[1:]
	}
	return rows
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
