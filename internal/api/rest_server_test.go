package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/middleware"
	"github.com/annel0/voxel-sandbox/internal/session"
	"github.com/annel0/voxel-sandbox/internal/world"
)

func newTestServer(t *testing.T) (*RestServer, *session.Session) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "world.json")

	sess, err := session.New(context.Background(), session.Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	return NewRestServer(sess, Config{}), sess
}

func doRequest(t *testing.T, rs *RestServer, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rs, _ := newTestServer(t)

	rec := doRequest(t, rs, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))
}

func TestPlayer(t *testing.T) {
	rs, _ := newTestServer(t)

	rec := doRequest(t, rs, http.MethodGet, "/api/player", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 20, snap.HP)
	assert.Equal(t, 10.0, snap.Player.Position.Y)
}

func TestEnvironment(t *testing.T) {
	rs, _ := newTestServer(t)

	rec := doRequest(t, rs, http.MethodGet, "/api/environment?t=30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env world.Environment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, world.EnvironmentState(30), env)

	rec = doRequest(t, rs, http.MethodGet, "/api/environment?t=noon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChunk(t *testing.T) {
	rs, sess := newTestServer(t)

	rec := doRequest(t, rs, http.MethodGet, "/api/chunks/0/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view ChunkView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 0, view.X)
	assert.Positive(t, view.Count)
	assert.Len(t, view.Blocks, view.Count)

	rec = doRequest(t, rs, http.MethodGet, "/api/chunks/40/40", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, rs, http.MethodGet, "/api/chunks/40/40?generate=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, sess.Manager().ChunkCount())

	rec = doRequest(t, rs, http.MethodGet, "/api/chunks/x/1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsole(t *testing.T) {
	rs, sess := newTestServer(t)

	rec := doRequest(t, rs, http.MethodPost, "/api/console", `{"command":"/tp 3 50 4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, sess.PlayerSnapshot().Player.Position.Y)

	rec = doRequest(t, rs, http.MethodPost, "/api/console", `{"command":"/tp x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, rs, http.MethodPost, "/api/console", `{"command":"/weather rain"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, rs, http.MethodPost, "/api/console", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEdit(t *testing.T) {
	rs, _ := newTestServer(t)

	rec := doRequest(t, rs, http.MethodPost, "/api/edit", `{"action":"dig"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Взгляд вперёд высоко над рельефом: попадания нет
	rec = doRequest(t, rs, http.MethodPost, "/api/console", `{"command":"/tp 0 90 0"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, rs, http.MethodPost, "/api/edit", `{"action":"break"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestMetricsEndpoint(t *testing.T) {
	rs, _ := newTestServer(t)
	doRequest(t, rs, http.MethodGet, "/health", "")

	rec := doRequest(t, rs, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sandbox_chunks_generated_total 9")
	assert.Contains(t, body, "rest_api_http_request_duration_seconds")
	assert.Contains(t, body, "eventbus_messages_published_total")
}
