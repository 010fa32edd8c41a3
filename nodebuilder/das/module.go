package das

import (
	"context"

	"github.com/ipfs/go-datastore"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share/proof"
	"github.com/availproject/avail-light-go/share/recovery"
	"github.com/availproject/avail-light-go/store"
)

func ConstructModule(cfg *Config) fx.Option {
	cfgErr := cfg.Validate()

	return fx.Module(
		"das",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(newPipeline),
		fx.Provide(fx.Annotate(
			options,
			fx.ParamTags(``, `group:"das_hooks"`),
		)),
		fx.Provide(fx.Annotate(
			newDASer,
			fx.OnStart(func(ctx context.Context, d *das.DASer) error {
				return d.Start(ctx)
			}),
			fx.OnStop(func(ctx context.Context, d *das.DASer) error {
				return d.Stop(ctx)
			}),
		)),
		// Module is needed for the gateway and the metrics
		fx.Provide(func(d *das.DASer) Module {
			return d
		}),
	)
}

func options(c Config, hooks []Hook) []das.Option {
	opts := []das.Option{
		das.WithSamplingRange(c.SamplingRange),
		das.WithConcurrencyLimit(c.ConcurrencyLimit),
		das.WithBackgroundStoreInterval(c.BackgroundStoreInterval),
		das.WithSampleFrom(c.SampleFrom),
		das.WithSampleTimeout(c.SampleTimeout),
		das.WithBackoff(c.BackoffInitialInterval, c.BackoffMultiplier, c.BackoffMaxRetryCount),
	}
	for _, hook := range hooks {
		opts = append(opts, das.WithOnProcessed(hook))
	}
	return opts
}

func newPipeline(
	cfg Config,
	fetcher das.Fetcher,
	verifier proof.Verifier,
	reconstructor *recovery.Reconstructor,
	results *store.Store,
) (*das.Pipeline, error) {
	return das.NewPipeline(cfg.parameters(), fetcher, verifier, reconstructor, results)
}

func newDASer(
	pipeline *das.Pipeline,
	results *store.Store,
	hsub header.Subscriber,
	getter header.Getter,
	batching datastore.Batching,
	options []das.Option,
) (*das.DASer, error) {
	return das.NewDASer(pipeline, results, hsub, getter, batching, options...)
}
