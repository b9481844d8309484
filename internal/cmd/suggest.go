package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/index"
	"github.com/querygate/querygate/internal/output"
)

var (
	suggestOutput string
	suggestOut    string
	suggestOutDir string
	suggestTopN   int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Look up prefix suggestions from the catalog index",
	Long: `Build the in-memory suggestion index from the catalog and print the
entries matching the given prefix, best weighted first. Suggestions are
never rate limited.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(suggestOutput)
		if err != nil {
			return err
		}

		db, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		records, err := db.AllRecords(cmd.Context())
		if err != nil {
			return err
		}

		idx := index.New()
		idx.Build(records)

		limit := suggestTopN
		if limit < 1 {
			limit = cfg.Suggest.Limit
		}

		start := time.Now()
		matches := idx.Suggest(args[0], limit)

		result := &core.LookupResult{
			Query:      strings.TrimSpace(args[0]),
			Records:    matches,
			Source:     core.SourceIndex,
			ResolvedAt: time.Now().UTC(),
			Elapsed:    time.Since(start),
		}

		outPath := strings.TrimSpace(suggestOut)
		outDir := strings.TrimSpace(suggestOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("suggest.%s", outputExtension(format)))
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
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVar(&suggestOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	suggestCmd.Flags().StringVar(&suggestOut, "out", "", "Write output to a file (default stdout)")
	suggestCmd.Flags().StringVar(&suggestOutDir, "out-dir", "", "Write output to a directory")
	suggestCmd.Flags().IntVar(&suggestTopN, "limit", 0, "Maximum suggestions (0 uses the configured default)")
}
