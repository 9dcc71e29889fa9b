package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheets serves the subset of the Sheets v4 values API the mirror uses.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    map[string][][]interface{}
	appends int
	deny    bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deny {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
		return
	}
	const prefix = "/v4/spreadsheets/sheet-id/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	if strings.HasSuffix(rng, ":append") {
		rng = strings.TrimSuffix(rng, ":append")
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tab := strings.SplitN(rng, "!", 2)[0]
		f.tabs[tab] = append(f.tabs[tab], body.Values...)
		f.appends++
		_ = json.NewEncoder(w).Encode(map[string]string{"spreadsheetId": "sheet-id"})
		return
	}
	parts := strings.SplitN(rng, "!", 2)
	rows := f.tabs[parts[0]]
	if len(parts) == 2 && parts[1] == "A:A" {
		var firstCol [][]interface{}
		for _, row := range rows {
			firstCol = append(firstCol, row[:1])
		}
		rows = firstCol
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"range": rng, "majorDimension": "ROWS", "values": rows})
}

func newTestSheets(t *testing.T, fake *fakeSheets) *SheetsMirror {
	t.Helper()
	if fake.tabs == nil {
		fake.tabs = map[string][][]interface{}{}
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	m, err := NewSheetsMirror(context.Background(), "sheet-id", "token", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return m
}

func TestSheetsMirrorPushAppendsOnlyNewRows(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{}
	m := newTestSheets(t, fake)
	snap := sampleSnapshot()

	require.NoError(t, m.Push(ctx, snap))
	require.Len(t, fake.tabs["Tasks"], 2, "header plus one task")
	require.Len(t, fake.tabs["Sessions"], 2, "header plus one session")
	assert.Equal(t, "uid", fake.tabs["Sessions"][0][0])

	appends := fake.appends
	require.NoError(t, m.Push(ctx, snap))
	assert.Equal(t, appends, fake.appends, "second push has nothing new")
	assert.Len(t, fake.tabs["Sessions"], 2)
}

func TestSheetsMirrorPull(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{}
	m := newTestSheets(t, fake)
	require.NoError(t, m.Push(ctx, sampleSnapshot()))

	got, err := m.Pull(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, "task-1", got.Tasks[0].UID)
	assert.Equal(t, "Write", got.Tasks[0].Name)
	assert.Equal(t, 1500, got.Sessions[0].Duration)
	assert.Equal(t, "task-1", got.Sessions[0].TaskUID)
	assert.True(t, got.Sessions[0].CompletedAt.Equal(stamp))
}

func TestSheetsMirrorPullEmpty(t *testing.T) {
	m := newTestSheets(t, &fakeSheets{})
	_, err := m.Pull(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSheetsMirrorAuthFailure(t *testing.T) {
	m := newTestSheets(t, &fakeSheets{deny: true})
	err := m.Push(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSheetsAuth)
}

func TestNewSheetsMirrorRequiresToken(t *testing.T) {
	_, err := NewSheetsMirror(context.Background(), "sheet-id", "", nil)
	assert.ErrorIs(t, err, ErrSheetsAuth)
	_, err = NewSheetsMirror(context.Background(), "", "token", nil)
	assert.Error(t, err)
}
