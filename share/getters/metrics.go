package getters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	sourceKey = "source"
	failedKey = "failed"
)

var meter = otel.Meter("share/getters")

type metrics struct {
	requested  metric.Int64Counter
	found      metric.Int64Counter
	fetchTime  metric.Float64Histogram
	backfilled metric.Int64Counter
}

// WithMetrics enables fetch metrics reporting.
func (f *Fetcher) WithMetrics() error {
	requested, err := meter.Int64Counter("fetcher_requested_cells_counter",
		metric.WithDescription("cells requested from a source"))
	if err != nil {
		return err
	}

	found, err := meter.Int64Counter("fetcher_found_cells_counter",
		metric.WithDescription("cells found in a source"))
	if err != nil {
		return err
	}

	fetchTime, err := meter.Float64Histogram("fetcher_fetch_time_histogram",
		metric.WithDescription("time spent fetching cells from a source"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	backfilled, err := meter.Int64Counter("fetcher_backfilled_cells_counter",
		metric.WithDescription("cells stored back into the cache"))
	if err != nil {
		return err
	}

	f.metrics = &metrics{
		requested:  requested,
		found:      found,
		fetchTime:  fetchTime,
		backfilled: backfilled,
	}
	return nil
}

func (m *metrics) observeStage(ctx context.Context, src Source, requested, found int, dur time.Duration) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	attrs := metric.WithAttributes(attribute.String(sourceKey, src.String()))
	m.requested.Add(ctx, int64(requested), attrs)
	m.found.Add(ctx, int64(found), attrs)
	m.fetchTime.Record(ctx, dur.Seconds(), attrs)
}

func (m *metrics) observeBackfill(ctx context.Context, cells int, failed bool) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	m.backfilled.Add(ctx, int64(cells), metric.WithAttributes(attribute.Bool(failedKey, failed)))
}
