package p2p

import (
	"context"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("p2p")

// WithMetrics option sets up metrics for p2p networking.
func WithMetrics(d *dht.IpfsDHT) error {
	peerCount, err := meter.Int64ObservableGauge(
		"p2p_peer_count",
		metric.WithDescription("number of peers connected to the host"),
	)
	if err != nil {
		return err
	}

	routingTableSize, err := meter.Int64ObservableGauge(
		"p2p_routing_table_size",
		metric.WithDescription("number of peers in the DHT routing table"),
	)
	if err != nil {
		return err
	}

	callback := func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(peerCount, int64(len(d.Host().Network().Peers())))
		observer.ObserveInt64(routingTableSize, int64(d.RoutingTable().Size()))
		return nil
	}

	_, err = meter.RegisterCallback(callback, peerCount, routingTableSize)
	return err
}
