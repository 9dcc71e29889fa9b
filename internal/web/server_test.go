package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/database"
	"github.com/akyairhashvil/deepwork/internal/models"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Filter  string          `json:"filter"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	db      *database.Database
	server  *Server
	changes int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := func() time.Time { return testNow }
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), database.WithNow(now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ts := &testServer{t: t, db: db}
	ts.server = NewServer(db, zap.NewNop(),
		WithNow(now),
		WithChangeHook(func(context.Context) { ts.changes++ }))
	return ts
}

func (ts *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)

	var env envelope
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func (ts *testServer) addTask(name string) models.Task {
	ts.t.Helper()
	task, err := ts.db.AddTask(context.Background(), models.Task{Name: name})
	require.NoError(ts.t, err)
	return task
}

func TestCreateAndListTasks(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodPost, "/api/tasks", map[string]any{"name": "Write", "defaultMinutes": 50})
	require.Equal(t, http.StatusCreated, w.Code)
	var created taskJSON
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Write", created.Name)
	assert.Equal(t, 50, created.DefaultMinutes)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, 1, ts.changes)

	w, env = ts.do(http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []taskJSON
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestCreateTaskValidation(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodPost, "/api/tasks", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "name")
	assert.Zero(t, ts.changes)
}

func TestUpdateTask(t *testing.T) {
	ts := newTestServer(t)
	task := ts.addTask("Draft")

	w, env := ts.do(http.MethodPatch, "/api/tasks/"+itoa(task.ID), map[string]any{"name": "Final"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated taskJSON
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, task.DefaultMinutes, updated.DefaultMinutes)

	w, _ = ts.do(http.MethodPatch, "/api/tasks/999", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodPatch, "/api/tasks/abc", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveTaskToggles(t *testing.T) {
	ts := newTestServer(t)
	task := ts.addTask("Write")

	_, env := ts.do(http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/archive", nil)
	var res struct {
		Archived bool `json:"archived"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Archived)

	_, env = ts.do(http.MethodGet, "/api/tasks", nil)
	assert.JSONEq(t, "[]", string(env.Data))

	_, env = ts.do(http.MethodGet, "/api/tasks?archived=true", nil)
	var all []taskJSON
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)

	_, env = ts.do(http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/archive", nil)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Archived)
}

func TestDeleteTaskRemovesSessions(t *testing.T) {
	ts := newTestServer(t)
	task := ts.addTask("Write")
	_, err := ts.db.AddSession(context.Background(), models.Session{TaskID: task.ID, DurationSec: 600})
	require.NoError(t, err)

	w, _ := ts.do(http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	sessions, err := ts.db.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)

	w, _ = ts.do(http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualSession(t *testing.T) {
	ts := newTestServer(t)
	task := ts.addTask("Write")

	w, env := ts.do(http.MethodPost, "/api/sessions", map[string]any{"taskId": task.ID, "minutes": 40})
	require.Equal(t, http.StatusCreated, w.Code)
	var sess sessionJSON
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, 2400, sess.DurationSeconds)
	assert.Equal(t, string(models.SessionManual), sess.Kind)
	assert.True(t, sess.CompletedAt.Equal(testNow))

	w, env = ts.do(http.MethodGet, "/api/sessions?filter=day", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "day", env.Filter)
	var list []sessionJSON
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestManualSessionRejects(t *testing.T) {
	ts := newTestServer(t)
	task := ts.addTask("Write")

	w, _ := ts.do(http.MethodPost, "/api/sessions", map[string]any{"taskId": task.ID, "minutes": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodPost, "/api/sessions", map[string]any{"taskId": 404, "minutes": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, ts.changes)
}

func TestSessionsFilterValidation(t *testing.T) {
	ts := newTestServer(t)
	w, env := ts.do(http.MethodGet, "/api/sessions?filter=year", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestDailyTarget(t *testing.T) {
	ts := newTestServer(t)

	_, env := ts.do(http.MethodGet, "/api/target", nil)
	assert.JSONEq(t, `{"date":"2026-03-02","targetMinutes":0}`, string(env.Data))

	w, env := ts.do(http.MethodPut, "/api/target", map[string]any{"minutes": 120})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2026-03-02","targetMinutes":120}`, string(env.Data))

	_, env = ts.do(http.MethodGet, "/api/target?date=2026-03-02", nil)
	assert.JSONEq(t, `{"date":"2026-03-02","targetMinutes":120}`, string(env.Data))

	w, _ = ts.do(http.MethodPut, "/api/target", map[string]any{"minutes": 5000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodGet, "/api/target?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	write := ts.addTask("Write")
	read := ts.addTask("Read")
	_, err := ts.db.AddSession(ctx, models.Session{TaskID: write.ID, DurationSec: 3600, CompletedAt: testNow.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = ts.db.AddSession(ctx, models.Session{TaskID: read.ID, DurationSec: 1800, CompletedAt: testNow.Add(-30 * time.Minute)})
	require.NoError(t, err)
	_, err = ts.db.SetDailyTarget(ctx, "2026-03-02", 120)
	require.NoError(t, err)

	w, env := ts.do(http.MethodGet, "/api/stats?filter=week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got statsResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))

	assert.Equal(t, "week", got.Filter)
	assert.Equal(t, 5400, got.TotalSeconds)
	assert.Equal(t, 5400, got.TodaySeconds)
	assert.Equal(t, 120, got.TargetMinutes)
	assert.InDelta(t, 0.75, got.Progress, 0.001)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "Write", got.Tasks[0].Name)
	assert.Len(t, got.Days, 7)
	assert.Equal(t, 1, got.Streak["current"])
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
