package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/querygate/querygate/internal/errors"
)

// LimitResponse is the payload for GET /v1/limit. It mirrors the
// limiter's derived error state without consuming or pruning anything,
// so clients can poll it freely.
type LimitResponse struct {
	Limited          bool  `json:"limited"`
	RemainingSeconds int   `json:"remaining_seconds"`
	MaxRequests      int   `json:"max_requests"`
	WindowMs         int64 `json:"window_ms"`
}

// LimitHandler reports the current admission state of the shared limiter.
func LimitHandler(w http.ResponseWriter, r *http.Request) {
	if queryBackend == nil {
		respondWithError(w, r, apperrors.NewInternalError("query backend not initialized"))
		return
	}

	state := queryBackend.LimitState()
	maxRequests, window := queryBackend.Limits()

	response := LimitResponse{
		Limited:          state.Limited,
		RemainingSeconds: state.RemainingSeconds,
		MaxRequests:      maxRequests,
		WindowMs:         window.Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
