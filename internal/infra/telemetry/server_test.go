package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzHandler(t *testing.T) {
	t.Run("default payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		healthzHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, map[string]any{"status": "ok"}, payload)
	})

	t.Run("merges health fields", func(t *testing.T) {
		health := func() map[string]any {
			return map[string]any{"poller": "armed", "inProgress": 2}
		}

		rec := httptest.NewRecorder()
		healthzHandler(health)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "ok", payload["status"])
		assert.Equal(t, "armed", payload["poller"])
		assert.Equal(t, float64(2), payload["inProgress"])
	})
}
