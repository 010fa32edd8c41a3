package p2p

import (
	"context"
	"errors"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	hst "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/routing"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/share/getters"
)

// protocolPrefix separates the DHT of the light clients from the public IPFS one.
const protocolPrefix = "/avail_kad"

var dhtNamespace = datastore.NewKey("dht")

func newDHT(
	ctx context.Context,
	lc fx.Lifecycle,
	cfg Config,
	host hst.Host,
	ds datastore.Batching,
) (*dht.IpfsDHT, error) {
	mode := dht.ModeClient
	if cfg.DHTServer {
		mode = dht.ModeServer
	}

	bootstrappers, err := cfg.bootstrappers()
	if err != nil {
		return nil, err
	}

	d, err := dht.New(
		ctx,
		host,
		dht.Mode(mode),
		dht.ProtocolPrefix(protocolPrefix),
		dht.BootstrapPeers(bootstrappers...),
		dht.Datastore(namespace.Wrap(ds, dhtNamespace)),
		dht.NamespacedValidator(getters.CellKeyNamespace, getters.CellValidator{}),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			connectBootstrappers(ctx, host, bootstrappers)
			return d.Bootstrap(ctx)
		},
		OnStop: func(context.Context) error {
			return d.Close()
		},
	})
	return d, nil
}

// connectBootstrappers dials every bootstrapper. Unreachable ones are only reported, as the DHT
// keeps retrying them on its own.
func connectBootstrappers(ctx context.Context, host hst.Host, bootstrappers []peer.AddrInfo) {
	var connected int
	for _, pi := range bootstrappers {
		err := host.Connect(ctx, pi)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Warnw("connecting to bootstrapper", "peer", pi.ID, "err", err)
			continue
		}
		connected++
	}
	if len(bootstrappers) > 0 {
		log.Infow("connected to bootstrappers", "connected", connected, "total", len(bootstrappers))
	}
}

func valueStore(d *dht.IpfsDHT) routing.ValueStore {
	return d
}
