package das

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/availproject/avail-light-go/header"
)

const (
	jobTypeLabel     = "job_type"
	headerWidthLabel = "header_width"
	failedLabel      = "failed"
	stateLabel       = "state"
)

var meter = otel.Meter("das")

type metrics struct {
	sampled       metric.Int64Counter
	sampleTime    metric.Float64Histogram
	getHeaderTime metric.Float64Histogram
	newHead       metric.Int64Counter
	outcomes      metric.Int64Counter
	confidence    metric.Float64Histogram

	lastSampledTS atomic.Uint64
	totalSampled  atomic.Uint64
}

// WithMetrics enables sampling metrics reporting.
func (d *DASer) WithMetrics() error {
	sampled, err := meter.Int64Counter("das_sampled_headers_counter",
		metric.WithDescription("sampled headers counter"))
	if err != nil {
		return err
	}

	sampleTime, err := meter.Float64Histogram("das_sample_time_hist",
		metric.WithDescription("duration of processing a single block"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	getHeaderTime, err := meter.Float64Histogram("das_get_header_time_hist",
		metric.WithDescription("duration of getting header from the node"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	newHead, err := meter.Int64Counter("das_head_updated_counter",
		metric.WithDescription("amount of times DASer advanced network head"))
	if err != nil {
		return err
	}

	outcomes, err := meter.Int64Counter("das_block_outcomes_counter",
		metric.WithDescription("processed blocks by resulting state"))
	if err != nil {
		return err
	}

	confidence, err := meter.Float64Histogram("das_confidence_hist",
		metric.WithDescription("achieved confidence of processed blocks"),
		metric.WithUnit("%"))
	if err != nil {
		return err
	}

	lastSampledTS, err := meter.Int64ObservableGauge("das_latest_sampled_ts",
		metric.WithDescription("latest sampled timestamp"))
	if err != nil {
		return err
	}

	busyWorkers, err := meter.Int64ObservableGauge("das_busy_workers_amount",
		metric.WithDescription("number of active parallel workers in DASer"))
	if err != nil {
		return err
	}

	networkHead, err := meter.Int64ObservableGauge("das_network_head",
		metric.WithDescription("most recent network head"))
	if err != nil {
		return err
	}

	sampledChainHead, err := meter.Int64ObservableGauge("das_sampled_chain_head",
		metric.WithDescription("height of the sampled chain - all previous blocks have been processed"))
	if err != nil {
		return err
	}

	totalSampled, err := meter.Int64ObservableGauge("das_total_sampled_headers",
		metric.WithDescription("total sampled headers gauge"))
	if err != nil {
		return err
	}

	m := &metrics{
		sampled:       sampled,
		sampleTime:    sampleTime,
		getHeaderTime: getHeaderTime,
		newHead:       newHead,
		outcomes:      outcomes,
		confidence:    confidence,
	}
	d.sampler.metrics = m
	d.metrics = m

	callback := func(ctx context.Context, observer metric.Observer) error {
		stats, err := d.sampler.stats(ctx)
		if err != nil {
			log.Errorf("observing stats: %s", err.Error())
			return err
		}

		for jobType, amount := range stats.workersByJobType() {
			observer.ObserveInt64(busyWorkers, amount,
				metric.WithAttributes(
					attribute.String(jobTypeLabel, string(jobType)),
				))
		}

		observer.ObserveInt64(networkHead, int64(stats.NetworkHead))
		observer.ObserveInt64(sampledChainHead, int64(stats.SampledChainHead))

		if ts := m.lastSampledTS.Load(); ts != 0 {
			observer.ObserveInt64(lastSampledTS, int64(ts))
		}

		observer.ObserveInt64(totalSampled, int64(m.totalSampled.Load()))
		return nil
	}

	_, err = meter.RegisterCallback(callback,
		lastSampledTS,
		busyWorkers,
		networkHead,
		sampledChainHead,
		totalSampled,
	)
	if err != nil {
		return fmt.Errorf("registering metrics callback: %w", err)
	}

	return nil
}

// observeSample records the time it took to process a block and the amount of processed blocks.
func (m *metrics) observeSample(
	ctx context.Context,
	h *header.BlockHeader,
	sampleTime time.Duration,
	jobType jobType,
	err error,
) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	attrs := metric.WithAttributes(
		attribute.Bool(failedLabel, err != nil),
		attribute.Int(headerWidthLabel, int(h.Cols)),
		attribute.String(jobTypeLabel, string(jobType)),
	)
	m.sampleTime.Record(ctx, sampleTime.Seconds(), attrs)
	m.sampled.Add(ctx, 1, attrs)

	if err == nil {
		m.totalSampled.Add(1)
	}
	m.lastSampledTS.Store(uint64(time.Now().UTC().Unix()))
}

// observeOutcome records the resulting state and confidence of a processed block.
func (m *metrics) observeOutcome(ctx context.Context, out Outcome) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	m.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String(stateLabel, out.State.String())))
	if out.scored() {
		m.confidence.Record(ctx, out.Confidence.Confidence)
	}
}

// observeGetHeader records the time it took to get a header.
func (m *metrics) observeGetHeader(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.getHeaderTime.Record(ctx, d.Seconds())
}

// observeNewHead records the network head.
func (m *metrics) observeNewHead(ctx context.Context) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.newHead.Add(ctx, 1)
}

func (m *metrics) recordTotalSampled(totalSampled uint64) {
	if m == nil {
		return
	}
	m.totalSampled.Store(totalSampled)
}
