package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/engine"
	"github.com/querygate/querygate/internal/output"
)

var (
	searchOutput  string
	searchOut     string
	searchOutDir  string
	searchLimit   int
	searchNoCache bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a catalog search through the admission gate",
	Long: `Run a single catalog search. The query passes through the same
minimum-length check and sliding-window admission gate the server uses,
and results are cached unless --no-cache is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(searchOutput)
		if err != nil {
			return err
		}

		db, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		var (
			fromCache  bool
			resolvedAt time.Time
		)
		lookup := func(ctx context.Context, query string) ([]core.Record, error) {
			if !searchNoCache {
				if cached, err := db.GetCachedSearch(ctx, query); err == nil && cached != nil {
					fromCache = true
					resolvedAt = cached.ResolvedAt
					return cached.Records, nil
				}
			}

			records, err := db.SearchRecords(ctx, query, searchLimit)
			if err != nil {
				return nil, err
			}
			resolvedAt = time.Now().UTC()

			if !searchNoCache {
				_ = db.SetCachedSearch(ctx, query, records, cfg.Cache.TTL)
			}
			return records, nil
		}

		controller := engine.New(engine.Config{
			MaxRequests:    cfg.Limiter.MaxRequests,
			Window:         cfg.Limiter.Window,
			Debounce:       cfg.Suggest.Debounce,
			MinQueryLength: cfg.Suggest.MinQueryLength,
		}, lookup, nil, nil)
		defer controller.Close()

		start := time.Now()
		admission, err := controller.Search(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, engine.ErrQueryTooShort) {
				return fmt.Errorf("query must be at least %d character(s)", cfg.Suggest.MinQueryLength)
			}
			return err
		}
		if !admission.Admitted {
			state := controller.ErrorState()
			return fmt.Errorf("rate limited: retry in %d second(s)", state.RemainingSeconds)
		}

		source := core.SourceStore
		if fromCache {
			source = core.SourceCache
		}
		result := &core.LookupResult{
			Query:      strings.TrimSpace(args[0]),
			Records:    admission.Records,
			Source:     source,
			ResolvedAt: resolvedAt,
			FromCache:  fromCache,
			Elapsed:    time.Since(start),
		}

		outPath := strings.TrimSpace(searchOut)
		outDir := strings.TrimSpace(searchOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("search.%s", outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		formatter := output.NewFormatter(format)
		rendered, err := formatter.FormatResult(result)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	searchCmd.Flags().StringVar(&searchOut, "out", "", "Write output to a file (default stdout)")
	searchCmd.Flags().StringVar(&searchOutDir, "out-dir", "", "Write output to a directory")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (0 uses the store default)")
	searchCmd.Flags().BoolVar(&searchNoCache, "no-cache", false, "Bypass the search result cache")
}
