package gateway

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	modeEndpoint        = "/v1/mode"
	latestBlockEndpoint = "/v1/latest_block"
	confidenceEndpoint  = "/v1/confidence"
	appDataEndpoint     = "/v1/appdata"
	healthEndpoint      = "/health"
	metricsEndpoint     = "/metrics"
)

var blockKey = "block"

func (h *Handler) RegisterEndpoints(srv *Server) {
	srv.RegisterHandlerFunc(modeEndpoint, h.handleModeRequest, http.MethodGet)
	srv.RegisterHandlerFunc(latestBlockEndpoint, h.handleLatestBlockRequest, http.MethodGet)
	srv.RegisterHandlerFunc(fmt.Sprintf("%s/{%s}", confidenceEndpoint, blockKey),
		h.handleConfidenceRequest, http.MethodGet)
	srv.RegisterHandlerFunc(fmt.Sprintf("%s/{%s}", appDataEndpoint, blockKey),
		h.handleAppDataRequest, http.MethodGet)
	srv.RegisterHandlerFunc(healthEndpoint, h.handleHealthRequest, http.MethodGet)

	if h.gatherer != nil {
		srv.RegisterHandler(metricsEndpoint, promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}
