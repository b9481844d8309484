package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querygate/querygate/internal/core/store"
	"github.com/querygate/querygate/internal/output"
)

var (
	cachePurgeAll     bool
	cachePurgeQuery   string
	cachePurgePrefix  string
	cachePurgeExpired bool
	cachePurgeYes     bool
	cachePurgeDryRun  bool
	cachePurgeOutput  string
	cachePurgeOut     string
	cachePurgeOutDir  string
)

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached search results",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cachePurgeOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		query := store.CacheQuery{
			All:     cachePurgeAll,
			Query:   strings.TrimSpace(cachePurgeQuery),
			Prefix:  strings.TrimSpace(cachePurgePrefix),
			Expired: cachePurgeExpired,
		}
		if err := query.Validate(); err != nil {
			return err
		}

		if query.All && !cachePurgeYes && !cachePurgeDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

		db, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		matched, err := db.CountCacheEntries(cmd.Context(), query)
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(cachePurgeOut)
		outDir := strings.TrimSpace(cachePurgeOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		ext := outputExtension(format)
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("cache.purge.%s", ext))
		}
		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if cachePurgeDryRun {
			return writeCachePurgeResult(format, sink.writer, matched, 0, true)
		}

		deleted, err := db.PurgeCacheEntries(cmd.Context(), query)
		if err != nil {
			return err
		}

		return writeCachePurgeResult(format, sink.writer, matched, deleted, false)
	},
}

func writeCachePurgeResult(format output.Format, w io.Writer, matched int, deleted int64, dryRun bool) error {
	result := map[string]any{
		"matched": matched,
		"deleted": deleted,
		"dry_run": dryRun,
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if dryRun {
		_, err := fmt.Fprintf(w, "Would delete %d cache entr(ies)\n", matched)
		return err
	}
	_, err := fmt.Fprintf(w, "Deleted %d/%d cache entr(ies)\n", deleted, matched)
	return err
}

func init() {
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "Purge all cached queries")
	cachePurgeCmd.Flags().StringVar(&cachePurgeQuery, "query", "", "Purge a single cached query (exact match)")
	cachePurgeCmd.Flags().StringVar(&cachePurgePrefix, "prefix", "", "Purge cached queries with matching prefix")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeExpired, "expired", false, "Purge only expired entries")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeYes, "yes", false, "Confirm destructive purge")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeDryRun, "dry-run", false, "Show what would be deleted")
	cachePurgeCmd.Flags().StringVar(&cachePurgeOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	cachePurgeCmd.Flags().StringVar(&cachePurgeOut, "out", "", "Write output to a file (default stdout)")
	cachePurgeCmd.Flags().StringVar(&cachePurgeOutDir, "out-dir", "", "Write output to a directory")
}
