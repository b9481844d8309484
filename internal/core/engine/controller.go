// Package engine composes the admission gate and the debounced dispatcher
// into the session-level query controller.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/dispatch"
	"github.com/querygate/querygate/internal/core/gate"
)

// ErrQueryTooShort is returned by Search before the limiter is ever
// consulted; a too-short query neither consumes an admission slot nor
// reaches the search backend.
var ErrQueryTooShort = errors.New("query is too short")

// Config holds the controller's immutable tuning knobs.
type Config struct {
	MaxRequests    int
	Window         time.Duration
	Debounce       time.Duration
	MinQueryLength int
}

// Controller wires explicit submits to the rate-limited search lookup and
// input changes to the debounced suggestion lookup. One controller serves
// one logical session.
type Controller struct {
	limiter   *gate.Limiter
	debouncer *dispatch.Debouncer
	minLength int
}

// New builds a controller around the two lookup collaborators. baseline is
// what the dispatcher publishes for an empty settled query.
func New(cfg Config, search core.QueryFunc, suggest core.QueryFunc, baseline []core.Record) *Controller {
	minLength := cfg.MinQueryLength
	if minLength < 1 {
		minLength = 1
	}
	return &Controller{
		limiter:   gate.New(cfg.MaxRequests, cfg.Window, search),
		debouncer: dispatch.New(cfg.Debounce, suggest, baseline),
		minLength: minLength,
	}
}

// Search submits a query to the admission-gated expensive lookup.
func (c *Controller) Search(ctx context.Context, query string) (gate.Admission, error) {
	query = strings.TrimSpace(query)
	if len(query) < c.minLength {
		return gate.Admission{}, ErrQueryTooShort
	}
	return c.limiter.Invoke(ctx, query)
}

// OnInput feeds a keystroke-level input change to the dispatcher.
func (c *Controller) OnInput(query string) {
	c.debouncer.OnInput(strings.TrimSpace(query))
}

// Suggestions returns the most recently published suggestion set.
func (c *Controller) Suggestions() []core.Record {
	return c.debouncer.Results()
}

// ErrorState reads the limiter's derived backoff state.
func (c *Controller) ErrorState() gate.ErrorState {
	return c.limiter.ErrorState()
}

// Limiter exposes the underlying gate for presentation-layer polling.
func (c *Controller) Limiter() *gate.Limiter {
	return c.limiter
}

// Debouncer exposes the underlying dispatcher so callers can attach
// publish/error hooks before the first input.
func (c *Controller) Debouncer() *dispatch.Debouncer {
	return c.debouncer
}

// Close tears the session down, cancelling any pending suggestion trigger.
func (c *Controller) Close() {
	c.debouncer.Close()
}
