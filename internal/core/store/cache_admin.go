package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CacheEntry describes one stored search cache row.
type CacheEntry struct {
	Query      string    `json:"query"`
	ResolvedAt time.Time `json:"resolved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CacheQuery selects cache rows for admin operations.
type CacheQuery struct {
	All     bool
	Query   string
	Prefix  string
	Expired bool
}

func (q CacheQuery) Validate() error {
	if q.All || q.Expired {
		return nil
	}
	if strings.TrimSpace(q.Query) != "" {
		return nil
	}
	if strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --expired, --query, or --prefix")
}

func (q CacheQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.Expired {
		return "WHERE expires_at <= ?", []any{time.Now().UTC().Unix()}, nil
	}
	if q.All {
		return "", nil, nil
	}
	if query := normalizeQuery(q.Query); query != "" {
		return "WHERE query = ?", []any{query}, nil
	}
	prefix := normalizeQuery(q.Prefix)
	if prefix == "" {
		return "", nil, errors.New("prefix is required")
	}
	return "WHERE query LIKE ?", []any{prefix + "%"}, nil
}

// ListCacheEntries returns cache rows matching the query, newest first.
func (s *Store) ListCacheEntries(ctx context.Context, q CacheQuery) ([]CacheEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT query, resolved_at, expires_at
		FROM search_cache
		%s
		ORDER BY resolved_at DESC
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []CacheEntry{}
	for rows.Next() {
		var (
			entry      CacheEntry
			resolvedAt int64
			expiresAt  int64
		)
		if err := rows.Scan(&entry.Query, &resolvedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan cache entries: %w", err)
		}
		entry.ResolvedAt = time.Unix(resolvedAt, 0).UTC()
		entry.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	return entries, nil
}

// CountCacheEntries reports how many rows match the query.
func (s *Store) CountCacheEntries(ctx context.Context, q CacheQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM search_cache
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return count, nil
}

// PurgeCacheEntries deletes rows matching the query and reports how many
// were removed.
func (s *Store) PurgeCacheEntries(ctx context.Context, q CacheQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM search_cache
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("purge cache entries: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache entries: %w", err)
	}
	return affected, nil
}
