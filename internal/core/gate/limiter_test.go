package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/querygate/querygate/internal/core"
)

func staticLookup(records []core.Record) core.QueryFunc {
	return func(ctx context.Context, query string) ([]core.Record, error) {
		return records, nil
	}
}

func TestLimiterSlidingWindow(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	limiter := New(2, 15*time.Second, staticLookup(nil))
	limiter.Clock = func() time.Time { return now }

	ctx := context.Background()

	now = base
	adm, err := limiter.Invoke(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	now = base.Add(1 * time.Millisecond)
	adm, err = limiter.Invoke(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	now = base.Add(2 * time.Millisecond)
	adm, err = limiter.Invoke(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, adm.Admitted)

	// The earliest timestamp has strictly expired by now.
	now = base.Add(15001 * time.Millisecond)
	adm, err = limiter.Invoke(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, adm.Admitted)
}

func TestLimiterRejectionSkipsLookup(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	limiter := New(1, time.Minute, func(ctx context.Context, query string) ([]core.Record, error) {
		calls++
		return nil, nil
	})
	limiter.Clock = func() time.Time { return base }

	adm, err := limiter.Invoke(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	adm, err = limiter.Invoke(context.Background(), "b")
	require.NoError(t, err)
	require.False(t, adm.Admitted)
	require.Equal(t, 1, calls)
}

func TestLimiterPassesRecordsThrough(t *testing.T) {
	records := []core.Record{
		{ID: "1", Name: "alice", Weight: 10},
		{ID: "2", Name: "alicia", Weight: 4},
	}
	limiter := New(5, time.Minute, staticLookup(records))

	adm, err := limiter.Invoke(context.Background(), "ali")
	require.NoError(t, err)
	require.True(t, adm.Admitted)
	require.Equal(t, records, adm.Records)
}

func TestLimiterLookupFailurePropagates(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lookupErr := errors.New("backend unavailable")
	limiter := New(1, time.Minute, func(ctx context.Context, query string) ([]core.Record, error) {
		return nil, lookupErr
	})
	limiter.Clock = func() time.Time { return base }

	_, err := limiter.Invoke(context.Background(), "a")
	require.ErrorIs(t, err, lookupErr)

	// The failed attempt still consumed its admission slot.
	adm, err := limiter.Invoke(context.Background(), "b")
	require.NoError(t, err)
	require.False(t, adm.Admitted)
}

func TestLimiterErrorState(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	limiter := New(2, 15*time.Second, staticLookup(nil))
	limiter.Clock = func() time.Time { return now }

	require.Equal(t, ErrorState{}, limiter.ErrorState())

	ctx := context.Background()
	_, err := limiter.Invoke(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, ErrorState{}, limiter.ErrorState())

	_, err = limiter.Invoke(ctx, "b")
	require.NoError(t, err)

	state := limiter.ErrorState()
	require.True(t, state.Limited)
	require.Equal(t, 15, state.RemainingSeconds)

	// Polling with no intervening invoke is idempotent.
	require.Equal(t, state, limiter.ErrorState())

	// Remaining time is monotonically non-increasing between polls.
	previous := state.RemainingSeconds
	for _, offset := range []time.Duration{3 * time.Second, 7 * time.Second, 14 * time.Second} {
		now = base.Add(offset)
		state = limiter.ErrorState()
		require.True(t, state.Limited)
		require.LessOrEqual(t, state.RemainingSeconds, previous)
		require.GreaterOrEqual(t, state.RemainingSeconds, 1)
		previous = state.RemainingSeconds
	}

	// Exactly at the window boundary the limited state clears.
	now = base.Add(15 * time.Second)
	require.Equal(t, ErrorState{}, limiter.ErrorState())
}

func TestLimiterErrorStateDoesNotPrune(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	limiter := New(1, 10*time.Second, staticLookup(nil))
	limiter.Clock = func() time.Time { return now }

	_, err := limiter.Invoke(context.Background(), "a")
	require.NoError(t, err)

	now = base.Add(time.Minute)
	require.Equal(t, ErrorState{}, limiter.ErrorState())

	// Pruning is Invoke's responsibility; the stale entry must not block it.
	adm, err := limiter.Invoke(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, adm.Admitted)
}

func TestLimiterClampsConfig(t *testing.T) {
	limiter := New(0, 0, staticLookup(nil))
	require.Equal(t, 1, limiter.MaxRequests())
	require.Equal(t, time.Second, limiter.Window())
}
