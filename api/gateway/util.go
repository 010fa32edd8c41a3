package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func writeError(w http.ResponseWriter, statusCode int, endpoint string, err error) {
	log.Debugw("serving request", "endpoint", endpoint, "err", err)

	w.WriteHeader(statusCode)

	_, err = w.Write([]byte(err.Error()))
	if err != nil {
		log.Errorw("writing error response", "endpoint", endpoint, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, endpoint string, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, endpoint, err)
		return
	}

	w.WriteHeader(statusCode)
	_, err = w.Write(resp)
	if err != nil {
		log.Errorw("writing response", "endpoint", endpoint, "err", err)
	}
}

func parseBlock(r *http.Request) (uint32, error) {
	block, err := strconv.ParseUint(mux.Vars(r)[blockKey], 10, 32)
	return uint32(block), err
}
