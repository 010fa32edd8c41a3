package gateway

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/availproject/avail-light-go/das"
)

var log = logging.Logger("gateway")

// Availability exposes the results of block processing.
type Availability interface {
	Mode() das.Mode
	Confidence(ctx context.Context, block uint32) (*das.ConfidenceRecord, error)
	AppData(ctx context.Context, block uint32) (*das.AppData, error)
	State(ctx context.Context, block uint32) (das.BlockState, error)
	LatestProcessedBlock(ctx context.Context) (uint32, error)
}

var _ Availability = (*das.DASer)(nil)

type Handler struct {
	avail    Availability
	gatherer prometheus.Gatherer
}

// NewHandler creates a Handler. A nil gatherer disables the metrics endpoint.
func NewHandler(avail Availability, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		avail:    avail,
		gatherer: gatherer,
	}
}
