package rpc

import (
	"context"

	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/rpc"
)

// ConstructModule provides the full node client and the header sources built over it.
func ConstructModule(cfg *Config) fx.Option {
	cfgErr := cfg.Validate()

	return fx.Module(
		"rpc",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(fx.Annotate(
			func(cfg Config) (*rpc.Client, error) {
				return rpc.NewClient(cfg.Endpoints, cfg.Timeout)
			},
			fx.OnStop(func(_ context.Context, client *rpc.Client) error {
				client.Close()
				return nil
			}),
		)),
		fx.Provide(func(client *rpc.Client) header.Getter {
			return client
		}),
		fx.Provide(func(cfg Config, getter header.Getter) header.Subscriber {
			return rpc.NewHeaderStream(getter, cfg.PollInterval)
		}),
	)
}
