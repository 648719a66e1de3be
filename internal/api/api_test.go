package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/store"
)

func newTestServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	cfg := Config{Logger: log.New(io.Discard)}
	if withStore {
		st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		cfg.Store = st
	}
	return New(cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Row     *int   `json:"row"`
		Col     *int   `json:"col"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Store)
	assert.NotEmpty(t, body.Build.Version)
}

func TestCreatePuzzleStored(t *testing.T) {
	h := newTestServer(t, true)

	rec := do(t, h, http.MethodPost, "/v1/puzzles",
		`{"width": 300, "height": 200, "rows": 2, "cols": 3, "seed": 42, "formats": ["svg", "dot"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "/v1/puzzles/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, uint64(42), resp.Seed)
	assert.True(t, resp.SeedExplicit)
	assert.Equal(t, 6, resp.Stats.Pieces)
	assert.Equal(t, 7, resp.Stats.Edges)
	assert.Len(t, resp.Document.Pieces, 6)
	assert.Contains(t, resp.Artifacts["svg"], "<svg")
	assert.Contains(t, resp.Artifacts["dot"], "digraph interlock")

	get := do(t, h, http.MethodGet, "/v1/puzzles/"+resp.ID, "")
	require.Equal(t, http.StatusOK, get.Code)
	var stored store.Record
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &stored))
	assert.Equal(t, uint64(42), stored.Seed)
	assert.Equal(t, 6, stored.Pieces)
	assert.NotEmpty(t, stored.Document)

	svg := do(t, h, http.MethodGet, "/v1/puzzles/"+resp.ID+"/svg?labels=true", "")
	require.Equal(t, http.StatusOK, svg.Code, svg.Body.String())
	assert.Equal(t, "image/svg+xml", svg.Header().Get("Content-Type"))
	assert.Contains(t, svg.Body.String(), ">1,2</text>")

	list := do(t, h, http.MethodGet, "/v1/puzzles?limit=5", "")
	require.Equal(t, http.StatusOK, list.Code)
	var runs map[string][]store.Record
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &runs))
	require.Len(t, runs["runs"], 1)
	assert.Equal(t, resp.ID, runs["runs"][0].ID)
	assert.Empty(t, runs["runs"][0].Document)

	del := do(t, h, http.MethodDelete, "/v1/puzzles/"+resp.ID, "")
	assert.Equal(t, http.StatusNoContent, del.Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/puzzles/"+resp.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/v1/puzzles/"+resp.ID, "").Code)
}

func TestCreatePuzzleReplaysEntropySeed(t *testing.T) {
	h := newTestServer(t, true)

	rec := do(t, h, http.MethodPost, "/v1/puzzles", `{"width": 300, "height": 200, "rows": 2, "cols": 3, "mode": "random"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.False(t, first.SeedExplicit)

	get := do(t, h, http.MethodGet, "/v1/puzzles/"+first.ID, "")
	var stored store.Record
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &stored))

	// The stored options carry the drawn seed, so posting them reproduces the run.
	replay := do(t, h, http.MethodPost, "/v1/puzzles", string(stored.Options))
	require.Equal(t, http.StatusCreated, replay.Code, replay.Body.String())
	var second generateResponse
	require.NoError(t, json.Unmarshal(replay.Body.Bytes(), &second))
	assert.Equal(t, first.Seed, second.Seed)
	assert.Equal(t, first.Artifacts["svg"], second.Artifacts["svg"])
}

func TestCreatePuzzleWithoutStore(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/v1/puzzles", `{"width": 100, "height": 100, "rows": 1, "cols": 1, "mode": "grid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.ID)
	assert.Equal(t, 0, resp.Stats.Edges)

	for _, target := range []string{"/v1/puzzles", "/v1/puzzles/abc", "/v1/puzzles/abc/svg"} {
		got := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotImplemented, got.Code, target)
		assert.Equal(t, "UNSUPPORTED", decodeError(t, got).Error.Code)
	}
}

func TestCreatePuzzleErrors(t *testing.T) {
	h := newTestServer(t, false)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"width": `, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"width": 10, "height": 10, "pieces": 4}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"zero width", `{"width": 0, "height": 10, "rows": 1, "cols": 1}`, http.StatusBadRequest, "INVALID_GEOMETRY"},
		{"bad mode", `{"width": 10, "height": 10, "mode": "hex"}`, http.StatusBadRequest, "INVALID_MODE"},
		{"bad format", `{"width": 10, "height": 10, "formats": ["gif"]}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"over server cap", `{"width": 1000, "height": 1000, "rows": 100, "cols": 100}`, http.StatusBadRequest, "INVALID_GEOMETRY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/puzzles", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestCreatePuzzleDegenerate(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/v1/puzzles", `{"width": 100, "height": 2000, "rows": 2, "cols": 10, "seed": 1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decodeError(t, rec)
	assert.Equal(t, "DEGENERATE_EDGE", body.Error.Code)
	require.NotNil(t, body.Error.Row)
	assert.Equal(t, 0, *body.Error.Row)
	assert.Equal(t, 0, *body.Error.Col)

	rec = do(t, h, http.MethodPost, "/v1/puzzles",
		`{"width": 100, "height": 2000, "rows": 2, "cols": 10, "seed": 1, "degenerate_policy": "warn"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Warnings, 20)
}

func TestRenderUnknownFormat(t *testing.T) {
	h := newTestServer(t, true)
	rec := do(t, h, http.MethodGet, "/v1/puzzles/whatever/gif", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", decodeError(t, rec).Error.Code)
}

func TestListInvalidLimit(t *testing.T) {
	h := newTestServer(t, true)
	rec := do(t, h, http.MethodGet, "/v1/puzzles?limit=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/puzzles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs": []}`, rec.Body.String())
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []string
	errors    []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func (h *recordingHTTPHooks) OnError(_ context.Context, method, route string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, method+" "+route)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h := newTestServer(t, true)
	do(t, h, http.MethodGet, "/healthz", "")
	do(t, h, http.MethodGet, "/v1/puzzles/missing", "")

	assert.Equal(t, []string{"GET /healthz OK", "GET /v1/puzzles/{id} Not Found"}, hooks.responses)
	assert.Equal(t, []string{"GET /v1/puzzles/{id}"}, hooks.errors)
}
