// Package dispatch coalesces bursts of input events into a single delayed
// lookup: each new event cancels the previous pending trigger, so only the
// query current at the end of a quiet period is ever dispatched.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/querygate/querygate/internal/core"
)

// Debouncer watches a stream of input changes and triggers a cheap lookup
// once input has been quiet for the configured delay. It owns at most one
// pending timer at a time.
type Debouncer struct {
	delay    time.Duration
	lookup   core.QueryFunc
	baseline []core.Record

	// OnPublish, when set, is called after each published result set.
	OnPublish func(query string, records []core.Record)

	// OnError receives lookup failures. The dispatcher does not recover
	// them; a failed lookup publishes nothing.
	OnError func(query string, err error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	results []core.Record
	closed  bool
}

// New creates a dispatcher around lookup. baseline is published, after the
// same delay, whenever the settled query is empty.
func New(delay time.Duration, lookup core.QueryFunc, baseline []core.Record) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		delay:    delay,
		lookup:   lookup,
		baseline: baseline,
		results:  baseline,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnInput registers a new input value. Any still-pending trigger is
// cancelled and a fresh one is scheduled after the full delay. The decision
// between "call the lookup" and "reset to baseline" is made only once the
// timer fires, so an empty query waits out the delay like any other.
func (d *Debouncer) OnInput(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen, query)
	})
}

// fire runs when a quiet period elapsed without a newer input cancelling it.
func (d *Debouncer) fire(gen uint64, query string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	if query == "" {
		d.publish(gen, query, d.baseline)
		return
	}
	if d.lookup == nil {
		return
	}

	records, err := d.lookup(d.ctx, query)
	if err != nil {
		if d.OnError != nil {
			d.OnError(query, err)
		}
		return
	}
	d.publish(gen, query, records)
}

func (d *Debouncer) publish(gen uint64, query string, records []core.Record) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		// A newer input arrived while the lookup was in flight; its result
		// supersedes this one.
		d.mu.Unlock()
		return
	}
	d.results = records
	d.mu.Unlock()

	if d.OnPublish != nil {
		d.OnPublish(query, records)
	}
}

// Results returns the most recently published result set.
func (d *Debouncer) Results() []core.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results
}

// Close cancels any outstanding trigger and the lookup context, and drops
// all future inputs. No result is published after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.cancel()
}
