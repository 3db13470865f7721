package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarag/internal/adapter/httpapi"
	"scholarag/internal/domain"
)

func healthHandler(checks []httpapi.HealthCheck) *httpapi.Handler {
	return httpapi.NewHandler(nil, nil, nil, nil, nil, nil, nil, checks)
}

func TestHealth_AllBackendsReachable(t *testing.T) {
	h := healthHandler([]httpapi.HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "embedding", Check: func(context.Context) error { return nil }},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Health(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	backends := body["backends"].(map[string]any)
	assert.Equal(t, "ok", backends["postgres"])
	assert.Equal(t, "ok", backends["embedding"])
}

func TestHealth_UnreachableBackendDegrades(t *testing.T) {
	h := healthHandler([]httpapi.HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "embedding", Check: func(context.Context) error {
			return fmt.Errorf("%w: connection refused", domain.ErrUnavailable)
		}},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Health(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	backends := body["backends"].(map[string]any)
	assert.Equal(t, "ok", backends["postgres"])
	assert.Contains(t, backends["embedding"], "connection refused")
}
