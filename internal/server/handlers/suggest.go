package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/querygate/querygate/internal/core"
	apperrors "github.com/querygate/querygate/internal/errors"
)

// SuggestResponse is the payload for GET /v1/suggest.
type SuggestResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Records []core.Record `json:"records"`
}

// SuggestHandler serves prefix suggestions from the in-memory index.
func SuggestHandler(w http.ResponseWriter, r *http.Request) {
	if queryBackend == nil {
		respondWithError(w, r, apperrors.NewInternalError("query backend not initialized"))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, r, apperrors.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := queryBackend.Suggest(r.Context(), query, limit)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "suggestion lookup failed"))
		return
	}

	response := SuggestResponse{
		Query:   query,
		Count:   len(records),
		Records: records,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
