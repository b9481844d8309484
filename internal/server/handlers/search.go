package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/engine"
	apperrors "github.com/querygate/querygate/internal/errors"
	"github.com/querygate/querygate/internal/metrics"
)

// SearchResponse is the payload for GET /v1/search.
type SearchResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Records []core.Record `json:"records"`
}

// SearchHandler serves the admission-gated expensive lookup. A query that
// exceeds the sliding-window budget gets 429 with a Retry-After header;
// the rejected request itself never consumes an admission slot.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if queryBackend == nil {
		respondWithError(w, r, apperrors.NewInternalError("query backend not initialized"))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("query parameter q is required"))
		return
	}

	admission, err := queryBackend.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, engine.ErrQueryTooShort) {
			respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
			return
		}
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, "search lookup failed"))
		return
	}

	metrics.RecordAdmission(admission.Admitted)

	if !admission.Admitted {
		state := queryBackend.LimitState()
		maxRequests, window := queryBackend.Limits()
		respondWithError(w, r, apperrors.NewRateLimitedError(
			fmt.Sprintf("request budget of %d per %s exhausted", maxRequests, window),
			state.RemainingSeconds,
		))
		return
	}

	response := SearchResponse{
		Query:   query,
		Count:   len(admission.Records),
		Records: admission.Records,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
