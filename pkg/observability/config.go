// Package observability provides OpenTelemetry tracing and metrics plus the
// structured logger used by every source-licenser run.
package observability

import (
	"io"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// AppMode identifies how a run treats the files it would change.
type AppMode string

const (
	// ModeApply writes changes to disk.
	ModeApply AppMode = "apply"
	// ModeDryRun records changes and prints them as diffs.
	ModeDryRun AppMode = "dry-run"
	// ModeCheck records changes and fails when any are pending.
	ModeCheck AppMode = "check"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "source-licenser"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Mode is recorded on every log line and on the OTel resource.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// MetricReaders are attached to the meter provider in addition to OTLP,
	// e.g. the Prometheus textfile reader.
	MetricReaders []sdkmetric.Reader

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogWriter receives log output. Nil means os.Stderr.
	LogWriter io.Writer

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for a local run without telemetry export.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeApply,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
