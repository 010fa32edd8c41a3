package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("node")

// WithMetrics registers node metrics: the start timestamp labeled with the build version and
// the total running time.
func WithMetrics(info *BuildInfo) error {
	nodeStartTS, err := meter.Int64ObservableGauge(
		"node_start_ts",
		metric.WithDescription("timestamp when the node was started"),
	)
	if err != nil {
		return err
	}

	totalNodeRunTime, err := meter.Float64ObservableCounter(
		"node_runtime_counter_in_seconds",
		metric.WithDescription("total time the node has been running"),
	)
	if err != nil {
		return err
	}

	started := time.Now()
	versionAttrs := metric.WithAttributes(
		attribute.String("version", info.GetSemanticVersion()),
		attribute.String("commit", info.CommitShortSha()),
	)
	callback := func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(nodeStartTS, started.Unix(), versionAttrs)
		observer.ObserveFloat64(totalNodeRunTime, time.Since(started).Seconds())
		return nil
	}

	_, err = meter.RegisterCallback(callback, nodeStartTS, totalNodeRunTime)
	return err
}
