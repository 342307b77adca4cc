package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/tuition-reconciler/internal/api/dto"
	"github.com/eshaffer321/tuition-reconciler/internal/api/handlers"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

func serveHealth(t *testing.T, h *handlers.HealthHandler) (int, dto.HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp dto.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandler(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		code, resp := serveHealth(t, handlers.NewHealthHandler(storage.NewMockRepository(), true))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Database)
		assert.Equal(t, "enabled", resp.OCR)
		assert.NotEmpty(t, resp.Timestamp)
	})

	t.Run("database down", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.PingErr = errors.New("disk I/O error")

		code, resp := serveHealth(t, handlers.NewHealthHandler(repo, false))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Database)
		assert.Equal(t, "disabled", resp.OCR)
	})
}
