package server

import (
	"context"
	"time"

	"github.com/querygate/querygate/internal/config"
	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/engine"
	"github.com/querygate/querygate/internal/core/gate"
	"github.com/querygate/querygate/internal/core/index"
	"github.com/querygate/querygate/internal/metrics"
)

// QueryService adapts the query engine to what the HTTP handlers need.
// One service (and therefore one shared limiter) backs the whole server;
// per-caller fairness is out of scope.
type QueryService struct {
	controller   *engine.Controller
	idx          *index.Index
	suggestLimit int
}

// NewQueryService builds the server-side query engine: prefix suggestions
// from the in-memory index and gated searches through the given lookup.
func NewQueryService(cfg *config.Config, idx *index.Index, search core.QueryFunc) *QueryService {
	timed := func(ctx context.Context, query string) ([]core.Record, error) {
		start := time.Now()
		records, err := search(ctx, query)
		metrics.RecordLookupDuration("search", time.Since(start))
		return records, err
	}

	controller := engine.New(engine.Config{
		MaxRequests:    cfg.Limiter.MaxRequests,
		Window:         cfg.Limiter.Window,
		Debounce:       cfg.Suggest.Debounce,
		MinQueryLength: cfg.Suggest.MinQueryLength,
	}, timed, idx.Lookup(cfg.Suggest.Limit), nil)

	return &QueryService{
		controller:   controller,
		idx:          idx,
		suggestLimit: cfg.Suggest.Limit,
	}
}

// Suggest serves the cheap prefix lookup directly from the index.
func (qs *QueryService) Suggest(ctx context.Context, query string, limit int) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = qs.suggestLimit
	}
	return qs.idx.Suggest(query, limit), nil
}

// Search submits a query through the admission gate.
func (qs *QueryService) Search(ctx context.Context, query string) (gate.Admission, error) {
	return qs.controller.Search(ctx, query)
}

// LimitState reads the limiter's derived backoff state.
func (qs *QueryService) LimitState() gate.ErrorState {
	return qs.controller.ErrorState()
}

// Limits reports the configured admission ceiling and window.
func (qs *QueryService) Limits() (int, time.Duration) {
	return qs.controller.Limiter().MaxRequests(), qs.controller.Limiter().Window()
}

// Close tears down the underlying controller.
func (qs *QueryService) Close() {
	qs.controller.Close()
}
