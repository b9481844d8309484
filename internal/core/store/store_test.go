package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/querygate/querygate/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLWithExistingQuery", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?foo=bar",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123&foo=bar", dsn)
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		cfg := config.StoreConfig{Path: "file:./querygate.db"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:./querygate.db", dsn)
	})

	t.Run("PathMissing", func(t *testing.T) {
		cfg := config.StoreConfig{}

		_, err := buildLibsqlDSN(cfg)
		require.Error(t, err)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		cfg := config.StoreConfig{Path: ":memory:"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})
}

func TestCacheQueryValidate(t *testing.T) {
	require.Error(t, CacheQuery{}.Validate())
	require.NoError(t, CacheQuery{All: true}.Validate())
	require.NoError(t, CacheQuery{Expired: true}.Validate())
	require.NoError(t, CacheQuery{Query: "golang"}.Validate())
	require.NoError(t, CacheQuery{Prefix: "go"}.Validate())
}

func TestCacheQueryWhereClause(t *testing.T) {
	where, args, err := CacheQuery{All: true}.whereClause()
	require.NoError(t, err)
	require.Empty(t, where)
	require.Empty(t, args)

	where, args, err = CacheQuery{Query: "  GoLang "}.whereClause()
	require.NoError(t, err)
	require.Equal(t, "WHERE query = ?", where)
	require.Equal(t, []any{"golang"}, args)

	where, args, err = CacheQuery{Prefix: "go"}.whereClause()
	require.NoError(t, err)
	require.Equal(t, "WHERE query LIKE ?", where)
	require.Equal(t, []any{"go%"}, args)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `a\_b`, escapeLike("a_b"))
	require.Equal(t, `back\\slash`, escapeLike(`back\slash`))
}
