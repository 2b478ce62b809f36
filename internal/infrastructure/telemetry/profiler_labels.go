package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelSyncType  = "sync_type"
)

// maxLabelValueLength bounds label values to keep profile series small
const maxLabelValueLength = 128

// WithProfilingLabels runs fn with pprof labels attached, so CPU and
// allocation samples taken inside fn can be filtered by label in Pyroscope.
// Empty keys or values are dropped. Without a running profiler the labels
// only reach the standard pprof endpoints.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// OperationLabels labels a named operation such as "sync.products"
func OperationLabels(operation string) map[string]string {
	return map[string]string{ProfilingLabelOperation: operation}
}

// SyncLabels labels a sync step with its operation and the sync type
func SyncLabels(step, syncType string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation: "sync." + step,
		ProfilingLabelSyncType:  syncType,
	}
}

// labelPairs flattens labels into sorted key, value pairs
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k != "" && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > maxLabelValueLength {
			v = v[:maxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
