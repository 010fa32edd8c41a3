package p2p

import (
	"context"

	dht "github.com/libp2p/go-libp2p-kad-dht"

	"github.com/availproject/avail-light-go/das"
	moddas "github.com/availproject/avail-light-go/nodebuilder/das"
)

// maintenance reports the state of the DHT once a block is processed.
func maintenance(d *dht.IpfsDHT) moddas.Hook {
	return func(_ context.Context, out das.Outcome) {
		log.Infow("maintenance",
			"block", out.Block,
			"routing_table_size", d.RoutingTable().Size(),
			"peers", len(d.Host().Network().Peers()),
		)
	}
}
