package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics records resync pipeline counters. A nil *SyncMetrics is valid
// and records nothing.
type SyncMetrics struct {
	runs         *Counter
	rowsWritten  *Counter
	stepDuration *Histogram
}

// NewSyncMetrics registers the pipeline instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := NewCounter(meter, "stockwise.sync.runs", "Resync runs by type and outcome", "{run}")
	if err != nil {
		return nil, err
	}
	rows, err := NewCounter(meter, "stockwise.sync.rows_written", "Rows written by resync steps", "{row}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "stockwise.sync.step_duration", "Duration of resync steps", "s", SyncDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{runs: runs, rowsWritten: rows, stepDuration: duration}, nil
}

// RecordRun counts a finished run.
func (m *SyncMetrics) RecordRun(ctx context.Context, syncType string, succeeded bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	m.runs.Add(ctx, 1, AttrSyncType.String(syncType), attribute.String("outcome", outcome))
}

// RecordStep records the duration and row count of one pipeline step.
func (m *SyncMetrics) RecordStep(ctx context.Context, step string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.rowsWritten.Add(ctx, int64(rows), AttrSyncStep.String(step))
	m.stepDuration.RecordDuration(ctx, d, AttrSyncStep.String(step))
}
