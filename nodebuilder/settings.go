package nodebuilder

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/libs/fxutil"
	"github.com/availproject/avail-light-go/libs/utils"
	moddas "github.com/availproject/avail-light-go/nodebuilder/das"
	"github.com/availproject/avail-light-go/nodebuilder/node"
	"github.com/availproject/avail-light-go/nodebuilder/p2p"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/store"
)

// WithMetrics enables metrics exporting for the node.
func WithMetrics(enable bool, p2pEnabled bool, metricOpts []otlpmetrichttp.Option) fx.Option {
	if !enable {
		return fx.Options()
	}

	return fx.Options(
		fx.Supply(metricOpts),
		fx.Invoke(InitializeMetrics),
		fx.Invoke(func(d *das.DASer) error {
			return d.WithMetrics()
		}),
		fx.Invoke(func(f *getters.Fetcher) error {
			return f.WithMetrics()
		}),
		fx.Invoke(func(s *store.Store) error {
			return s.WithMetrics()
		}),
		fx.Invoke(node.WithMetrics),
		fxutil.If(p2pEnabled, fx.Invoke(p2p.WithMetrics)),
	)
}

// WithTracing enables span exporting for the node.
func WithTracing(enable bool, traceOpts []otlptracehttp.Option) fx.Option {
	if !enable {
		return fx.Options()
	}

	return fx.Options(
		fx.Supply(traceOpts),
		fx.Invoke(InitializeTracing),
	)
}

type telemetryParams struct {
	fx.In

	Ctx    context.Context
	Lc     fx.Lifecycle
	DASer  moddas.Module
	PeerID peer.ID `optional:"true"`
}

func (p telemetryParams) config() utils.TelemetryConfig {
	cfg := utils.TelemetryConfig{
		ServiceNamespace: "avail-light",
		ServiceName:      p.DASer.Mode().String(),
	}
	if p.PeerID != "" {
		cfg.ServiceInstanceID = p.PeerID.String()
	}
	return cfg
}

// InitializeMetrics initializes the global meter provider.
func InitializeMetrics(params telemetryParams, opts []otlpmetrichttp.Option) error {
	provider, err := utils.NewMetricProvider(params.Ctx, params.config(), opts...)
	if err != nil {
		return err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	otel.SetMeterProvider(provider)
	return nil
}

// InitializeTracing initializes the global tracer provider.
func InitializeTracing(params telemetryParams, opts []otlptracehttp.Option) error {
	provider, err := utils.NewTracerProvider(params.Ctx, params.config(), opts...)
	if err != nil {
		return err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	otel.SetTracerProvider(provider)
	return nil
}
