package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileExporter collects OTel metrics into a private Prometheus registry
// and writes them in the text exposition format, for node_exporter's
// textfile collector or CI artifacts.
type TextfileExporter struct {
	registry *prometheus.Registry
	reader   sdkmetric.Reader
}

// NewTextfileExporter creates the exporter. Pass [TextfileExporter.Reader]
// to [Config.MetricReaders] so run instruments are collected.
func NewTextfileExporter() (*TextfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileExporter{registry: registry, reader: exporter}, nil
}

// Reader returns the metric reader to attach to the meter provider.
func (e *TextfileExporter) Reader() sdkmetric.Reader {
	return e.reader
}

// WriteFile gathers the registry and atomically writes it to path.
func (e *TextfileExporter) WriteFile(path string) error {
	err := prometheus.WriteToTextfile(path, e.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
