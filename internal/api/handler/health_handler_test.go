package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("health ignores dependencies", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": down})
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ready when every check passes", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": ok})
		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var status HealthStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, status.Checks)
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": down})
		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var status HealthStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, "error", status.Status)
		assert.Equal(t, "ok", status.Checks["database"])
		assert.Equal(t, "failed: connection refused", status.Checks["redis"])
	})
}
