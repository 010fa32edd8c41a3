package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/availproject/avail-light-go/api/gateway"
	"github.com/availproject/avail-light-go/das"
)

// Handler registers the gateway endpoints and middleware of the DASer on the server.
func Handler(daser *das.DASer, gatherer prometheus.Gatherer, serv *gateway.Server) {
	handler := gateway.NewHandler(daser, gatherer)
	handler.RegisterEndpoints(serv)
	handler.RegisterMiddleware(serv)
}

func server(cfg Config) *gateway.Server {
	return gateway.NewServer(cfg.Address, cfg.Port, cfg.CORSAllowedOrigins)
}
