package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/querygate/querygate/internal/core/store"
	"github.com/querygate/querygate/internal/output"
)

var (
	cacheListOutput  string
	cacheListOut     string
	cacheListOutDir  string
	cacheListAll     bool
	cacheListPrefix  string
	cacheListExpired bool
)

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached search results",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cacheListOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		db, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		query := store.CacheQuery{
			All:     cacheListAll,
			Prefix:  strings.TrimSpace(cacheListPrefix),
			Expired: cacheListExpired,
		}
		if !query.All && query.Prefix == "" && !query.Expired {
			query.All = true
		}

		entries, err := db.ListCacheEntries(cmd.Context(), query)
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(cacheListOut)
		outDir := strings.TrimSpace(cacheListOutDir)
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
			outPath = filepath.Join(outDir, fmt.Sprintf("cache.list.%s", ext))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		lines := []string{"Search Cache", ""}
		if len(entries) == 0 {
			lines = append(lines, "(no cached search results)")
			_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
			return nil
		}

		for _, entry := range entries {
			lines = append(lines, fmt.Sprintf("%s: resolved=%s expires=%s",
				entry.Query,
				entry.ResolvedAt.UTC().Format(time.RFC3339),
				entry.ExpiresAt.UTC().Format(time.RFC3339)))
		}

		_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return nil
	},
}

func init() {
	cacheListCmd.Flags().StringVar(&cacheListOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	cacheListCmd.Flags().StringVar(&cacheListOut, "out", "", "Write output to a file (default stdout)")
	cacheListCmd.Flags().StringVar(&cacheListOutDir, "out-dir", "", "Write output to a directory")
	cacheListCmd.Flags().BoolVar(&cacheListAll, "all", false, "List all cached queries")
	cacheListCmd.Flags().StringVar(&cacheListPrefix, "prefix", "", "List cached queries with matching prefix")
	cacheListCmd.Flags().BoolVar(&cacheListExpired, "expired", false, "List only expired entries")
}
