package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecli/internal/config"
	"tradecli/pkg/contracts/domain"
)

func testTelemetryConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		ServiceName:   "tradecli-test",
		Environment:   "test",
		TraceExporter: "none",
		JobName:       "trade_pipeline",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestInitializeTelemetry(t *testing.T) {
	tel, err := InitializeTelemetry(testTelemetryConfig(), discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.NotNil(t, tel.Tracer)
	assert.Nil(t, tel.TracerProvider, "no SDK tracer without an exporter")
	assert.NotNil(t, tel.MeterProvider)
	assert.NotNil(t, tel.Registry)
	require.NotNil(t, tel.Metrics)

	ctx, span := tel.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestInitializeTelemetry_StdoutTracer(t *testing.T) {
	cfg := testTelemetryConfig()
	cfg.TraceExporter = "stdout"

	tel, err := InitializeTelemetry(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "step")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("boom"))
	SetSpanAttributes(ctx, map[string]interface{}{"records": 3, "ok": true, "step": "load"})
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, tel.Shutdown(shutdownCtx))
}

func TestInitializeTelemetry_UnknownExporter(t *testing.T) {
	cfg := testTelemetryConfig()
	cfg.TraceExporter = "zipkin"

	_, err := InitializeTelemetry(cfg, discardLogger())
	assert.Error(t, err)
}

func TestPipelineMetrics_Gathered(t *testing.T) {
	tel, err := InitializeTelemetry(testTelemetryConfig(), discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.AddRecordsRead(ctx, 5)
	tel.Metrics.AddRecordsDropped(ctx, 2)
	tel.Metrics.AddRecordsWritten(ctx, "csv", 3)
	tel.Metrics.AddCategoryCounts(ctx, map[domain.Category]int{domain.CategoryGlass: 2, domain.CategoryOthers: 1})
	tel.Metrics.RecordStep(ctx, "load", 150*time.Millisecond, true)
	tel.Metrics.RecordRun(ctx, true)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)

	read := findFamily(families, "pipeline_records_read_total")
	require.NotNil(t, read)
	require.Len(t, read.GetMetric(), 1)
	assert.Equal(t, 5.0, read.GetMetric()[0].GetCounter().GetValue())

	byCategory := findFamily(families, "pipeline_records_by_category_total")
	require.NotNil(t, byCategory)
	assert.Len(t, byCategory.GetMetric(), 2)
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRun(ctx, false)
		m.RecordStep(ctx, "load", time.Second, false)
		m.AddRecordsRead(ctx, 1)
		m.AddRecordsDropped(ctx, 1)
		m.AddRecordsWritten(ctx, "table", 1)
		m.AddCategoryCounts(ctx, map[domain.Category]int{domain.CategorySteel: 1})
		m.AddUnparsedDates(ctx, 1)
		m.AddGrandTotal(ctx, 10)
	})
}

func TestTelemetry_Push(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testTelemetryConfig()
	cfg.PushgatewayURL = server.URL
	tel, err := InitializeTelemetry(cfg, discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	tel.Metrics.AddRecordsRead(context.Background(), 1)
	require.NoError(t, tel.Push(context.Background(), "run-42"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/trade_pipeline/run_id/run-42", path)
	assert.NotEmpty(t, body)
}

func TestTelemetry_PushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testTelemetryConfig()
	cfg.PushgatewayURL = server.URL
	tel, err := InitializeTelemetry(cfg, discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.Error(t, tel.Push(context.Background(), "run-1"))
}

func TestTelemetry_PushDisabled(t *testing.T) {
	tel, err := InitializeTelemetry(testTelemetryConfig(), discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.NoError(t, tel.Push(context.Background(), "run-1"))

	var nilTel *Telemetry
	assert.NoError(t, nilTel.Push(context.Background(), "run-1"))
	assert.NoError(t, nilTel.Shutdown(context.Background()))
}
