package store

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const failedKey = "failed"

var meter = otel.Meter("store")

type metrics struct {
	commit metric.Float64Histogram
	get    metric.Float64Histogram
}

// WithMetrics enables store metrics reporting.
func (s *Store) WithMetrics() error {
	commit, err := meter.Float64Histogram("results_store_commit_time_histogram",
		metric.WithDescription("results store commit time histogram(s)"))
	if err != nil {
		return err
	}

	get, err := meter.Float64Histogram("results_store_get_time_histogram",
		metric.WithDescription("results store get time histogram(s)"))
	if err != nil {
		return err
	}

	s.metrics = &metrics{
		commit: commit,
		get:    get,
	}
	return nil
}

func (m *metrics) observeCommit(ctx context.Context, dur time.Duration, failed bool) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	m.commit.Record(ctx, dur.Seconds(), metric.WithAttributes(
		attribute.Bool(failedKey, failed)))
}

func (m *metrics) observeGet(ctx context.Context, dur time.Duration, failed bool) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	m.get.Record(ctx, dur.Seconds(), metric.WithAttributes(
		attribute.Bool(failedKey, failed)))
}
