// Package gate admits or rejects calls to an expensive lookup using a
// sliding window over past admission timestamps.
package gate

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/querygate/querygate/internal/core"
)

// Admission is the outcome of an admission check. A rejected call never
// reaches the wrapped lookup and records no timestamp.
type Admission struct {
	Admitted bool          `json:"admitted"`
	Records  []core.Record `json:"records,omitempty"`
}

// ErrorState is derived from the retained timestamps; it is recomputed on
// every read and holds no state of its own.
type ErrorState struct {
	Limited          bool `json:"limited"`
	RemainingSeconds int  `json:"remaining_seconds,omitempty"`
}

// Limiter wraps a lookup with sliding-window call admission. At most
// MaxRequests admitted calls may start within any trailing Window.
type Limiter struct {
	maxRequests int
	window      time.Duration
	lookup      core.QueryFunc

	// Clock is overridable for tests; nil means time.Now.
	Clock func() time.Time

	mu         sync.Mutex
	timestamps []time.Time
}

// New creates a limiter around lookup. maxRequests and window are clamped
// to sane minimums and are immutable for the limiter's lifetime.
func New(maxRequests int, window time.Duration, lookup core.QueryFunc) *Limiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		lookup:      lookup,
	}
}

// Invoke runs the admission check and, if admitted, the wrapped lookup.
// The prune + length check + append happens as one critical section before
// the lookup is awaited, so overlapping calls each see the window as it
// stood when they started. A failure of the wrapped lookup is returned
// unchanged; it is never translated into a rejection, and the timestamp
// recorded for the attempt is not refunded.
func (l *Limiter) Invoke(ctx context.Context, query string) (Admission, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.admit() {
		return Admission{}, nil
	}

	records, err := l.lookup(ctx, query)
	if err != nil {
		return Admission{}, err
	}
	return Admission{Admitted: true, Records: records}, nil
}

// admit prunes expired timestamps, checks the window, and records the new
// timestamp on success. This is the only place pruning occurs.
func (l *Limiter) admit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	expired := 0
	for expired < len(l.timestamps) && now.Sub(l.timestamps[expired]) >= l.window {
		expired++
	}
	if expired > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[expired:]...)
	}

	if len(l.timestamps) >= l.maxRequests {
		return false
	}

	l.timestamps = append(l.timestamps, now)
	return true
}

// ErrorState derives the current limited/idle state from the retained
// timestamps. It is a pure read: it never prunes, so it can briefly disagree
// with the next Invoke, which is tolerated for display purposes.
func (l *Limiter) ErrorState() ErrorState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.timestamps) < l.maxRequests {
		return ErrorState{}
	}

	elapsed := l.now().Sub(l.timestamps[0])
	if elapsed >= l.window {
		return ErrorState{}
	}

	remaining := int(math.Ceil((l.window - elapsed).Seconds()))
	if remaining < 1 {
		remaining = 1
	}
	return ErrorState{Limited: true, RemainingSeconds: remaining}
}

// MaxRequests returns the configured admission cap.
func (l *Limiter) MaxRequests() int {
	return l.maxRequests
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}
