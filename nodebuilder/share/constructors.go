package share

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/routing"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/rpc"
	"github.com/availproject/avail-light-go/share/getters"
)

var log = logging.Logger("module/share")

// cellCache is where cells are looked up first and stored back to.
type cellCache interface {
	getters.Getter
	getters.Putter
}

type cacheParams struct {
	fx.In

	Config  Config
	Routing routing.ValueStore `optional:"true"`
}

func newCache(p cacheParams) (cellCache, error) {
	if p.Routing == nil {
		log.Info("peer-to-peer network is disabled, caching cells in memory")
		return getters.NewMemStore(p.Config.CacheSize)
	}
	return getters.NewDHTStore(p.Routing, p.Config.CacheSize)
}

func newFetcher(cfg Config, cache cellCache, client *rpc.Client) *getters.Fetcher {
	return getters.NewFetcher(cache, cache, client, cfg.Parameters)
}
