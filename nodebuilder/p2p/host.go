package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	hst "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/nodebuilder/node"
)

func userAgent(build *node.BuildInfo) string {
	return fmt.Sprintf("avail-light-go/%s/%s", build.GetSemanticVersion(), build.CommitShortSha())
}

type hostParams struct {
	fx.In

	Cfg             Config
	Lc              fx.Lifecycle
	Key             crypto.PrivKey
	Build           *node.BuildInfo
	ResourceManager network.ResourceManager
	Registry        prometheus.Registerer
}

// host returns constructor for Host.
func host(params hostParams) (hst.Host, error) {
	h, err := libp2p.New(
		libp2p.Identity(params.Key),
		libp2p.ListenAddrStrings(params.Cfg.ListenAddresses...),
		libp2p.UserAgent(userAgent(params.Build)),
		libp2p.ResourceManager(params.ResourceManager),
		libp2p.PrometheusRegisterer(params.Registry),
		libp2p.NATPortMap(),
	)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return h.Close()
	}})

	return h, nil
}
