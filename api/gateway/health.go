package gateway

import (
	"errors"
	"net/http"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/store"
)

// HealthResponse reports liveness together with the sampling progress.
type HealthResponse struct {
	Status      string   `json:"status"`
	Mode        das.Mode `json:"mode"`
	LatestBlock *uint32  `json:"latest_block,omitempty"`
}

func (h *Handler) handleHealthRequest(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Mode: h.avail.Mode()}
	latest, err := h.avail.LatestProcessedBlock(r.Context())
	switch {
	case err == nil:
		resp.LatestBlock = &latest
	case !errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusServiceUnavailable, healthEndpoint, err)
		return
	}
	writeJSON(w, http.StatusOK, healthEndpoint, resp)
}
