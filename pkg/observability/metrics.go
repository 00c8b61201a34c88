package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal    = "licenser.runs.total"
	metricRunDuration  = "licenser.run.duration.seconds"
	metricFilesTotal   = "licenser.files.total"
	metricFileDuration = "licenser.file.duration.seconds"
	metricActionsTotal = "licenser.actions.total"

	attrOutcome = "outcome"
	attrAction  = "action"
	attrStatus  = "status"
)

// fileBucketBoundaries covers 100µs to 5s; most files are a single read and write.
var fileBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// runBucketBoundaries covers 10ms to 600s for whole-tree runs.
var runBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the OTel instruments of a licensing run. It satisfies
// the walker recorder interface.
type RunMetrics struct {
	runsTotal    metric.Int64Counter
	runDuration  metric.Float64Histogram
	filesTotal   metric.Int64Counter
	fileDuration metric.Float64Histogram
	actionsTotal metric.Int64Counter
}

// NewRunMetrics creates the run instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	runsTotal, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total number of runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	runDuration, err := mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(runBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	filesTotal, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files visited by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	fileDuration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Time spent applying the actions of one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	actionsTotal, err := mt.Int64Counter(metricActionsTotal,
		metric.WithDescription("Action applications by action and outcome"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricActionsTotal, err)
	}

	return &RunMetrics{
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		filesTotal:   filesTotal,
		fileDuration: fileDuration,
		actionsTotal: actionsTotal,
	}, nil
}

// RecordFile counts a visited file. Durations are recorded only for files
// whose actions ran.
func (rm *RunMetrics) RecordFile(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	rm.filesTotal.Add(ctx, 1, attrs)

	if duration > 0 {
		rm.fileDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordAction counts one action application.
func (rm *RunMetrics) RecordAction(ctx context.Context, action, outcome string) {
	rm.actionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordRun records a finished run with its mode and status.
func (rm *RunMetrics) RecordRun(ctx context.Context, mode AppMode, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrMode, string(mode)),
		attribute.String(attrStatus, status),
	)

	rm.runsTotal.Add(ctx, 1, attrs)
	rm.runDuration.Record(ctx, duration.Seconds(), attrs)
}
