package nodebuilder

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/libs/fxutil"
	"github.com/availproject/avail-light-go/nodebuilder/das"
	"github.com/availproject/avail-light-go/nodebuilder/gateway"
	"github.com/availproject/avail-light-go/nodebuilder/node"
	"github.com/availproject/avail-light-go/nodebuilder/p2p"
	"github.com/availproject/avail-light-go/nodebuilder/rpc"
	"github.com/availproject/avail-light-go/nodebuilder/share"
)

func ConstructModule(cfg *Config, store Store) fx.Option {
	baseComponents := fx.Options(
		fx.Provide(func(lc fx.Lifecycle) context.Context {
			return fxutil.WithLifecycle(context.Background(), lc)
		}),
		fx.Supply(cfg),
		fx.Provide(store.Datastore),
		fx.Provide(registry),
		// modules provided by the node
		node.ConstructModule(&cfg.Node),
		p2p.ConstructModule(&cfg.P2P),
		rpc.ConstructModule(&cfg.RPC),
		share.ConstructModule(&cfg.Share),
		das.ConstructModule(&cfg.DASer),
		gateway.ConstructModule(&cfg.Gateway),
	)

	return fx.Module(
		"light",
		baseComponents,
	)
}

// registry collects the Prometheus metrics served by the gateway. The runtime collectors are
// registered up front, libp2p registers its own on host construction.
func registry() (*prometheus.Registry, prometheus.Registerer, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, reg, reg
}
