package engine

import (
	"context"
	"time"

	"github.com/querygate/querygate/internal/core/gate"
)

// DefaultPollInterval is the cadence presentation layers sample the
// limiter's error state at.
const DefaultPollInterval = time.Second

// Reporter periodically samples a limiter's derived error state and hands
// each sample to a sink. It holds no state of its own; the limiter remains
// the single source of truth and is never mutated by a sample.
type Reporter struct {
	interval time.Duration
	source   func() gate.ErrorState
	sink     func(gate.ErrorState)
}

// NewReporter builds a reporter polling source every interval.
func NewReporter(interval time.Duration, source func() gate.ErrorState, sink func(gate.ErrorState)) *Reporter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Reporter{interval: interval, source: source, sink: sink}
}

// Run samples until ctx is cancelled. The caller owns the goroutine; the
// core never starts a background loop on its own.
func (r *Reporter) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.sink != nil {
				r.sink(r.source())
			}
		}
	}
}
