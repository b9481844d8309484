package core

import (
	"context"
	"time"
)

// QueryFunc is the contract for a lookup backend: it accepts a query string
// and produces an ordered list of records. It may block and it may fail;
// callers decide whether and when it runs.
type QueryFunc func(ctx context.Context, query string) ([]Record, error)

// Record is a single catalog entry returned by lookups. The admission and
// dispatch layers treat it as an opaque payload and never inspect its fields.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      int    `json:"weight,omitempty"`
}

// LookupSource identifies where a lookup result came from.
type LookupSource string

const (
	SourceIndex LookupSource = "index"
	SourceStore LookupSource = "store"
	SourceCache LookupSource = "cache"
)

// LookupResult reports a resolved lookup and supporting context.
type LookupResult struct {
	Query      string        `json:"query"`
	Records    []Record      `json:"records"`
	Source     LookupSource  `json:"source"`
	ResolvedAt time.Time     `json:"resolved_at"`
	FromCache  bool          `json:"from_cache,omitempty"`
	Elapsed    time.Duration `json:"-"`
}
