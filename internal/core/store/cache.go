package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/querygate/querygate/internal/core"
)

// GetCachedSearch returns a cached search result if it is still valid.
func (s *Store) GetCachedSearch(ctx context.Context, query string) (*core.LookupResult, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := normalizeQuery(query)
	if key == "" {
		return nil, errors.New("cache query is required")
	}

	var (
		resultsJSON string
		resolvedAt  int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT results_json, resolved_at
		FROM search_cache
		WHERE query = ? AND expires_at > ?
	`, key, time.Now().UTC().Unix())

	if err := row.Scan(&resultsJSON, &resolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached search: %w", err)
	}

	var records []core.Record
	if err := json.Unmarshal([]byte(resultsJSON), &records); err != nil {
		return nil, fmt.Errorf("decode cached search: %w", err)
	}

	return &core.LookupResult{
		Query:      key,
		Records:    records,
		Source:     core.SourceCache,
		ResolvedAt: time.Unix(resolvedAt, 0).UTC(),
		FromCache:  true,
	}, nil
}

// SetCachedSearch stores a search result with a TTL.
func (s *Store) SetCachedSearch(ctx context.Context, query string, records []core.Record, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := normalizeQuery(query)
	if key == "" {
		return errors.New("cache query is required")
	}
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cached search: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO search_cache (query, results_json, resolved_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			results_json = excluded.results_json,
			resolved_at = excluded.resolved_at,
			expires_at = excluded.expires_at
	`, key, string(payload), now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("store cached search: %w", err)
	}
	return nil
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
