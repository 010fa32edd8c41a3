package utils

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.11.0"
)

// TelemetryConfig describes the identity and the export settings of the node telemetry.
type TelemetryConfig struct {
	// ServiceNamespace is the network the node runs on.
	ServiceNamespace string
	// ServiceName is the operating mode of the node.
	ServiceName string
	// ServiceInstanceID is the unique instance identifier, usually the peer ID.
	ServiceInstanceID string
	// Interval at which metrics are collected and exported (defaults to 10s).
	Interval time.Duration
}

func (cfg TelemetryConfig) resource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNamespaceKey.String(cfg.ServiceNamespace),
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceInstanceIDKey.String(cfg.ServiceInstanceID),
	)
}

// NewMetricProvider creates a new OTLP metric provider with the given configuration.
func NewMetricProvider(
	ctx context.Context,
	cfg TelemetryConfig,
	opts ...otlpmetrichttp.Option,
) (*sdk.MeterProvider, error) {
	opts = append([]otlpmetrichttp.Option{
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}, opts...)

	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = 10 * time.Second
	}

	provider := sdk.NewMeterProvider(
		sdk.WithReader(
			sdk.NewPeriodicReader(exp,
				sdk.WithTimeout(interval),
				sdk.WithInterval(interval))),
		sdk.WithResource(cfg.resource()))
	return provider, nil
}

// NewTracerProvider creates a new OTLP tracer provider with the given configuration.
func NewTracerProvider(
	ctx context.Context,
	cfg TelemetryConfig,
	opts ...otlptracehttp.Option,
) (*tracesdk.TracerProvider, error) {
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	return tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(cfg.resource()),
	), nil
}
