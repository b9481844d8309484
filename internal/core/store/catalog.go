package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/querygate/querygate/internal/core"
)

// UpsertRecords inserts or replaces catalog records in one transaction.
func (s *Store) UpsertRecords(ctx context.Context, records []core.Record) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		name := strings.TrimSpace(rec.Name)
		if id == "" || name == "" {
			return fmt.Errorf("record requires id and name, got id=%q name=%q", rec.ID, rec.Name)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, name, description, weight)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				weight = excluded.weight
		`, id, name, rec.Description, rec.Weight)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// SearchRecords runs the expensive full-catalog search: a substring match
// over name and description, heaviest records first.
func (s *Store) SearchRecords(ctx context.Context, query string, limit int) ([]core.Record, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, weight
		FROM records
		WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY weight DESC, name ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	return scanRecords(rows)
}

// AllRecords returns the full catalog, used to build the suggestion index.
func (s *Store) AllRecords(ctx context.Context) ([]core.Record, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, weight
		FROM records
		ORDER BY weight DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	return scanRecords(rows)
}

// CountRecords reports the catalog size.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func scanRecords(rows *sql.Rows) ([]core.Record, error) {
	records := []core.Record{}
	for rows.Next() {
		var (
			rec         core.Record
			description sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &description, &rec.Weight); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Description = description.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
