package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/querygate/querygate/internal/core"
)

type recordingLookup struct {
	mu      sync.Mutex
	queries []string
}

func (r *recordingLookup) fn(ctx context.Context, query string) ([]core.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	return []core.Record{{ID: "1", Name: query}}, nil
}

func (r *recordingLookup) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	lookup := &recordingLookup{}
	d := New(30*time.Millisecond, lookup.fn, nil)
	defer d.Close()

	d.OnInput("a")
	d.OnInput("al")
	d.OnInput("ali")

	require.Eventually(t, func() bool {
		return len(d.Results()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, []string{"ali"}, lookup.calls())
	require.Equal(t, "ali", d.Results()[0].Name)
}

func TestDebouncerEmptyQueryWaitsFullDelay(t *testing.T) {
	baseline := []core.Record{{ID: "b", Name: "baseline"}}
	lookup := &recordingLookup{}
	d := New(40*time.Millisecond, lookup.fn, baseline)
	defer d.Close()

	d.OnInput("go")
	require.Eventually(t, func() bool {
		results := d.Results()
		return len(results) == 1 && results[0].Name == "go"
	}, 2*time.Second, 5*time.Millisecond)

	d.OnInput("")

	// The reset is not immediate: the previous result stays published until
	// the quiet period elapses.
	require.Equal(t, "go", d.Results()[0].Name)

	require.Eventually(t, func() bool {
		results := d.Results()
		return len(results) == 1 && results[0].Name == "baseline"
	}, 2*time.Second, 5*time.Millisecond)

	// The empty query never reached the lookup.
	require.Equal(t, []string{"go"}, lookup.calls())
}

func TestDebouncerCloseCancelsPendingTrigger(t *testing.T) {
	lookup := &recordingLookup{}
	d := New(30*time.Millisecond, lookup.fn, nil)

	d.OnInput("abandoned")
	d.Close()

	time.Sleep(80 * time.Millisecond)
	require.Empty(t, lookup.calls())

	// Inputs after Close are dropped.
	d.OnInput("late")
	time.Sleep(80 * time.Millisecond)
	require.Empty(t, lookup.calls())
}

func TestDebouncerLastWriterWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)

	d := New(10*time.Millisecond, func(ctx context.Context, query string) ([]core.Record, error) {
		started <- query
		if query == "slow" {
			<-release
		}
		return []core.Record{{ID: query, Name: query}}, nil
	}, nil)
	defer d.Close()

	d.OnInput("slow")
	select {
	case q := <-started:
		require.Equal(t, "slow", q)
	case <-time.After(2 * time.Second):
		t.Fatal("first lookup never started")
	}

	// A newer input arrives while the slow lookup is still in flight.
	d.OnInput("fast")
	select {
	case q := <-started:
		require.Equal(t, "fast", q)
	case <-time.After(2 * time.Second):
		t.Fatal("second lookup never started")
	}

	require.Eventually(t, func() bool {
		results := d.Results()
		return len(results) == 1 && results[0].Name == "fast"
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(30 * time.Millisecond)

	// The superseded result must not overwrite the newer one.
	require.Equal(t, "fast", d.Results()[0].Name)
}

func TestDebouncerLookupFailurePublishesNothing(t *testing.T) {
	lookupErr := errors.New("index offline")
	var gotQuery string
	var gotErr error
	done := make(chan struct{})

	d := New(10*time.Millisecond, func(ctx context.Context, query string) ([]core.Record, error) {
		return nil, lookupErr
	}, []core.Record{{ID: "b", Name: "baseline"}})
	d.OnError = func(query string, err error) {
		gotQuery = query
		gotErr = err
		close(done)
	}
	defer d.Close()

	d.OnInput("boom")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("error hook never fired")
	}

	require.Equal(t, "boom", gotQuery)
	require.ErrorIs(t, gotErr, lookupErr)
	require.Equal(t, "baseline", d.Results()[0].Name)
}
