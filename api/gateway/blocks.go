package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/store"
)

// ConfidenceResponse represents the response to a `/v1/confidence` request.
type ConfidenceResponse struct {
	Block                uint32  `json:"block"`
	Confidence           float64 `json:"confidence"`
	SerializedConfidence uint64  `json:"serialised_confidence"`
}

// LatestBlockResponse represents the response to a `/v1/latest_block` request.
type LatestBlockResponse struct {
	LatestBlock uint32 `json:"latest_block"`
}

// AppDataResponse represents the response to a `/v1/appdata` request.
type AppDataResponse struct {
	Block      uint32   `json:"block"`
	AppID      uint32   `json:"app_id"`
	Extrinsics [][]byte `json:"extrinsics"`
}

// StatusResponse is returned for blocks which are not processed yet.
type StatusResponse struct {
	Block  uint32 `json:"block"`
	Status string `json:"status"`
}

var errAppMode = errors.New("app data is available only in app mode")

func (h *Handler) handleModeRequest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modeEndpoint, h.avail.Mode())
}

func (h *Handler) handleLatestBlockRequest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.avail.LatestProcessedBlock(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, latestBlockEndpoint, errors.New("no block processed yet"))
	case err != nil:
		writeError(w, http.StatusInternalServerError, latestBlockEndpoint, err)
	default:
		writeJSON(w, http.StatusOK, latestBlockEndpoint, LatestBlockResponse{LatestBlock: latest})
	}
}

func (h *Handler) handleConfidenceRequest(w http.ResponseWriter, r *http.Request) {
	block, err := parseBlock(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, confidenceEndpoint, err)
		return
	}

	rec, err := h.avail.Confidence(r.Context(), block)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, confidenceEndpoint, ConfidenceResponse{
			Block:                rec.Block,
			Confidence:           rec.Confidence,
			SerializedConfidence: rec.Serialized(),
		})
	case errors.Is(err, store.ErrNotFound):
		h.writeMissing(r.Context(), w, confidenceEndpoint, block)
	default:
		writeError(w, http.StatusInternalServerError, confidenceEndpoint, err)
	}
}

func (h *Handler) handleAppDataRequest(w http.ResponseWriter, r *http.Request) {
	if !h.avail.Mode().IsAppClient() {
		writeError(w, http.StatusBadRequest, appDataEndpoint, errAppMode)
		return
	}
	block, err := parseBlock(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, appDataEndpoint, err)
		return
	}

	data, err := h.avail.AppData(r.Context(), block)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeMissing(r.Context(), w, appDataEndpoint, block)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, appDataEndpoint, err)
		return
	}

	resp := AppDataResponse{
		Block:      data.BlockNumber,
		AppID:      data.AppID,
		Extrinsics: data.Extrinsics,
	}
	if r.URL.Query().Get("decode") == "true" {
		resp.Extrinsics, err = data.Decoded()
		if err != nil {
			writeError(w, http.StatusInternalServerError, appDataEndpoint, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, appDataEndpoint, resp)
}

// writeMissing tells apart blocks which are still to be processed from blocks which were
// processed without producing the requested record.
func (h *Handler) writeMissing(ctx context.Context, w http.ResponseWriter, endpoint string, block uint32) {
	latest, err := h.avail.LatestProcessedBlock(ctx)
	noneProcessed := errors.Is(err, store.ErrNotFound)
	if err != nil && !noneProcessed {
		writeError(w, http.StatusInternalServerError, endpoint, err)
		return
	}

	state, err := h.avail.State(ctx, block)
	if err != nil {
		writeError(w, http.StatusInternalServerError, endpoint, err)
		return
	}

	// incomplete app data is still worth waiting for
	pending := state == das.ConfidenceComputed && endpoint == appDataEndpoint
	if noneProcessed || block > latest || pending {
		writeJSON(w, http.StatusAccepted, endpoint, StatusResponse{Block: block, Status: "processing"})
		return
	}
	writeError(w, http.StatusNotFound, endpoint, fmt.Errorf("block %d: %w", block, store.ErrNotFound))
}
