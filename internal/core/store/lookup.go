package store

import (
	"context"
	"time"

	"github.com/querygate/querygate/internal/core"
)

// CachedSearch returns a lookup that consults the search cache before
// falling back to a catalog search. Fresh results are cached best effort;
// a cache write failure never fails the lookup.
func (s *Store) CachedSearch(ttl time.Duration, limit int) core.QueryFunc {
	return func(ctx context.Context, query string) ([]core.Record, error) {
		if cached, err := s.GetCachedSearch(ctx, query); err == nil && cached != nil {
			return cached.Records, nil
		}

		records, err := s.SearchRecords(ctx, query, limit)
		if err != nil {
			return nil, err
		}

		_ = s.SetCachedSearch(ctx, query, records, ttl)
		return records, nil
	}
}
