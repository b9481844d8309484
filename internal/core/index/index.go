// Package index provides the in-memory prefix index backing cheap
// suggestion lookups.
package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/querygate/querygate/internal/core"
)

// DefaultLimit caps suggestion results when the caller does not.
const DefaultLimit = 10

// Index is a weight-ordered prefix index over catalog records. Lookups are
// case-insensitive on record names.
type Index struct {
	mu   sync.RWMutex
	trie *patricia.Trie
	size int
}

// New returns an empty index.
func New() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// Build replaces the index contents with the given records.
func (x *Index) Build(records []core.Record) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.trie = patricia.NewTrie()
	x.size = 0
	for _, rec := range records {
		x.insert(rec)
	}
}

// Add inserts a single record.
func (x *Index) Add(rec core.Record) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.insert(rec)
}

func (x *Index) insert(rec core.Record) {
	key := strings.ToLower(strings.TrimSpace(rec.Name))
	if key == "" {
		return
	}

	prefix := patricia.Prefix(key)
	if item := x.trie.Get(prefix); item != nil {
		bucket := item.([]core.Record)
		x.trie.Set(prefix, append(bucket, rec))
	} else {
		x.trie.Insert(prefix, []core.Record{rec})
	}
	x.size++
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}

// Suggest returns up to limit records whose name starts with prefix,
// heaviest first. An empty prefix yields nothing.
func (x *Index) Suggest(prefix string, limit int) []core.Record {
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := strings.ToLower(strings.TrimSpace(prefix))
	if key == "" {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []core.Record
	_ = x.trie.VisitSubtree(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		matches = append(matches, item.([]core.Record)...)
		return nil
	})

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Weight != matches[j].Weight {
			return matches[i].Weight > matches[j].Weight
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Lookup adapts the index into the QueryFunc contract expected by the
// dispatch layer.
func (x *Index) Lookup(limit int) core.QueryFunc {
	return func(ctx context.Context, query string) ([]core.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return x.Suggest(query, limit), nil
	}
}
