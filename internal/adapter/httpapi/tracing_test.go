package httpapi_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"scholarag/internal/adapter/httpapi"
)

func recordingTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return exporter
}

func TestTracing_RecordsServerSpanPerRequest(t *testing.T) {
	exporter := recordingTracer(t)

	e := echo.New()
	e.Use(httpapi.Tracing("scholarag"))
	e.GET("/v1/corpora", func(c echo.Context) error {
		// The active span must be visible to handler code so log records
		// can be stamped with its ids.
		span := trace.SpanFromContext(c.Request().Context())
		assert.True(t, span.SpanContext().IsValid())
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/corpora", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /v1/corpora", spans[0].Name)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := recordingTracer(t)

	e := echo.New()
	e.Use(httpapi.Tracing("scholarag"))
	e.GET("/v1/corpora", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "embedding backend down")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/corpora", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ClientErrorLeavesSpanUnset(t *testing.T) {
	exporter := recordingTracer(t)

	e := echo.New()
	e.Use(httpapi.Tracing("scholarag"))
	e.GET("/v1/corpora", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, errors.New("no such corpus"))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/corpora", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}
