package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dsjohal14/ledgerwal/internal/journal"
	"github.com/dsjohal14/ledgerwal/internal/obs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHandler(t *testing.T) (*Handler, *chi.Mux, *journal.Journal) {
	t.Helper()
	dir := t.TempDir()

	j, err := journal.AppendJournal(dir, journal.WithMaxFileSize(256))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	obs.InitLogger("error")
	logger := obs.Logger("test")
	handler := NewHandler(j, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/health", handler.HandleHealth)
	r.Get("/segments", handler.HandleSegments)
	r.Get("/checkpoints", handler.HandleListCheckpoints)
	r.Post("/checkpoints", handler.HandleRegisterCheckpoint)
	r.Post("/gc", handler.HandleGC)

	return handler, r, j
}

func TestHandleHealth(t *testing.T) {
	_, router, _ := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 0, resp.SegmentCount)
}

func TestHandleSegments(t *testing.T) {
	_, router, j := setupTestHandler(t)

	future, err := j.Append([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, future.Wait())

	req := httptest.NewRequest(http.MethodGet, "/segments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SegmentsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "active", resp.Segments[0].State)
}

func TestHandleRegisterAndListCheckpoints(t *testing.T) {
	_, router, j := setupTestHandler(t)

	future, err := j.Append([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, future.Wait())

	req := httptest.NewRequest(http.MethodPost, "/checkpoints", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var checkpoint CheckpointResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&checkpoint))
	assert.Equal(t, uint64(0), checkpoint.ID)

	req = httptest.NewRequest(http.MethodGet, "/checkpoints", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var list CheckpointsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, []uint64{0}, list.CheckpointIDs)
}

func TestHandleGCRequiresCheckpoint(t *testing.T) {
	_, router, _ := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/gc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "gc_failed", errResp.Code)
}
