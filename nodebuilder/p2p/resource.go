package p2p

import (
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/network"
	rcmgr "github.com/libp2p/go-libp2p/p2p/host/resource-manager"
	"github.com/prometheus/client_golang/prometheus"
)

// resourceManager limits the resources libp2p consumes and reports its usage to the registry.
func resourceManager(reg prometheus.Registerer) (network.ResourceManager, error) {
	limits := rcmgr.DefaultLimits
	libp2p.SetDefaultServiceLimits(&limits)

	rcmgr.MustRegisterWith(reg)
	str, err := rcmgr.NewStatsTraceReporter()
	if err != nil {
		return nil, err
	}

	return rcmgr.NewResourceManager(
		rcmgr.NewFixedLimiter(limits.AutoScale()),
		rcmgr.WithTraceReporter(str),
	)
}
