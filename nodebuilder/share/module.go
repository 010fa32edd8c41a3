package share

import (
	"context"

	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/share/proof"
	"github.com/availproject/avail-light-go/share/recovery"
	"github.com/availproject/avail-light-go/store"
)

func ConstructModule(cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	return fx.Module(
		"share",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(newCache),
		fx.Provide(fx.Annotate(
			newFetcher,
			fx.OnStop(func(ctx context.Context, fetcher *getters.Fetcher) error {
				return fetcher.Stop(ctx)
			}),
		)),
		fx.Provide(func(fetcher *getters.Fetcher) das.Fetcher {
			return fetcher
		}),
		fx.Provide(func(cfg Config) proof.Verifier {
			return proof.NewVerifier(cfg.DisableVerification)
		}),
		fx.Provide(func(cfg Config) *recovery.Reconstructor {
			return recovery.NewReconstructor(cfg.ReconstructParallelism)
		}),
		fx.Provide(store.NewStore),
	)
}
