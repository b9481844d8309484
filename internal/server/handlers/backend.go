package handlers

import (
	"context"
	"time"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/gate"
)

// QueryBackend is what the domain handlers need from the query engine.
// The server package injects the concrete implementation at startup.
type QueryBackend interface {
	// Suggest runs the cheap prefix lookup. It is never rate limited.
	Suggest(ctx context.Context, query string, limit int) ([]core.Record, error)

	// Search runs the admission-gated expensive lookup. A rejected
	// admission is not an error; the handler translates it to 429.
	Search(ctx context.Context, query string) (gate.Admission, error)

	// LimitState reads the limiter's current backoff state.
	LimitState() gate.ErrorState

	// Limits reports the configured admission ceiling and window.
	Limits() (maxRequests int, window time.Duration)
}

var queryBackend QueryBackend

// SetQueryBackend injects the query engine used by the domain handlers.
func SetQueryBackend(backend QueryBackend) {
	queryBackend = backend
}
