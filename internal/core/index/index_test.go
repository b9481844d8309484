package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/querygate/querygate/internal/core"
)

func sampleRecords() []core.Record {
	return []core.Record{
		{ID: "1", Name: "alice", Weight: 50},
		{ID: "2", Name: "alicia", Weight: 80},
		{ID: "3", Name: "alistair", Weight: 10},
		{ID: "4", Name: "bob", Weight: 90},
		{ID: "5", Name: "Aline", Weight: 70},
	}
}

func TestSuggestOrdersByWeight(t *testing.T) {
	idx := New()
	idx.Build(sampleRecords())
	require.Equal(t, 5, idx.Len())

	got := idx.Suggest("ali", 10)
	require.Len(t, got, 3)
	require.Equal(t, "alicia", got[0].Name)
	require.Equal(t, "alice", got[1].Name)
	require.Equal(t, "alistair", got[2].Name)
}

func TestSuggestCaseInsensitive(t *testing.T) {
	idx := New()
	idx.Build(sampleRecords())

	got := idx.Suggest("ALIN", 10)
	require.Len(t, got, 1)
	require.Equal(t, "Aline", got[0].Name)
}

func TestSuggestHonorsLimit(t *testing.T) {
	idx := New()
	idx.Build(sampleRecords())

	got := idx.Suggest("a", 2)
	require.Len(t, got, 2)
	require.Equal(t, "alicia", got[0].Name)
	require.Equal(t, "Aline", got[1].Name)
}

func TestSuggestEmptyPrefix(t *testing.T) {
	idx := New()
	idx.Build(sampleRecords())
	require.Empty(t, idx.Suggest("", 10))
	require.Empty(t, idx.Suggest("   ", 10))
}

func TestAddDuplicateNames(t *testing.T) {
	idx := New()
	idx.Add(core.Record{ID: "1", Name: "echo", Weight: 5})
	idx.Add(core.Record{ID: "2", Name: "echo", Weight: 9})

	got := idx.Suggest("ec", 10)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
}

func TestLookupAdapter(t *testing.T) {
	idx := New()
	idx.Build(sampleRecords())

	lookup := idx.Lookup(10)
	records, err := lookup(context.Background(), "bo")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "bob", records[0].Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lookup(ctx, "bo")
	require.Error(t, err)
}
