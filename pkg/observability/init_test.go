package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/source-licenser/pkg/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerWritesModeAndService(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeCheck
	cfg.LogJSON = true
	cfg.LogWriter = &buf

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.Info("hello", "files", 3)

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "source-licenser", record["service"])
	assert.Equal(t, "check", record["mode"])
	assert.InDelta(t, 3, record["files"], 0)
}

func TestInit_LoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &buf

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.Debug("hidden")
	assert.Empty(t, buf.String())

	providers.Logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "mode=apply")
}

func TestInit_MetricReadersReceiveInstruments(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.2.3"
	cfg.MetricReaders = []sdkmetric.Reader{reader}

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	metrics, err := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordAction(context.Background(), "header", "modified")

	rm := collectMetrics(t, reader)

	serviceName, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "source-licenser", serviceName.AsString())

	version, ok := rm.Resource.Set().Value("service.version")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", version.AsString())

	assert.NotNil(t, findMetric(rm, "licenser.actions.total"))
}
