package p2p

import (
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"
)

var log = logging.Logger("module/p2p")

// ConstructModule collects all the components and services related to p2p.
func ConstructModule(cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()
	if cfg.Disabled {
		return fx.Error(cfgErr)
	}

	return fx.Module(
		"p2p",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(Key),
		fx.Provide(id),
		fx.Provide(resourceManager),
		fx.Provide(host),
		fx.Provide(newDHT),
		fx.Provide(valueStore),
		fx.Provide(fx.Annotate(
			maintenance,
			fx.ResultTags(`group:"das_hooks"`),
		)),
	)
}
