package node

import (
	"go.uber.org/fx"
)

func ConstructModule(cfg *Config) fx.Option {
	cfgErr := cfg.Validate()

	return fx.Module(
		"node",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(GetBuildInfo),
	)
}
