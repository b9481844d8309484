package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/engine"
	"github.com/querygate/querygate/internal/core/gate"
	"github.com/querygate/querygate/internal/core/index"
	"github.com/querygate/querygate/internal/metrics"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Interactive query session with debounced suggestions",
	Long: `Start an interactive session on stdin. Every line you type is treated
as the current query text: suggestions appear once typing settles, and an
empty line clears them back to the baseline.

Commands:
  /search <query>   submit the query through the admission gate
  /limit            show the current admission state
  /quit             end the session

While the gate is closed the session prints a countdown once per second.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		controller := engine.New(engine.Config{
			MaxRequests:    cfg.Limiter.MaxRequests,
			Window:         cfg.Limiter.Window,
			Debounce:       cfg.Suggest.Debounce,
			MinQueryLength: cfg.Suggest.MinQueryLength,
		}, db.CachedSearch(cfg.Cache.TTL, 0), idx.Lookup(cfg.Suggest.Limit), nil)
		defer controller.Close()

		controller.Debouncer().OnPublish = func(query string, published []core.Record) {
			metrics.RecordSuggestDispatch(true)
			if query == "" {
				fmt.Println("suggestions cleared")
				return
			}
			if len(published) == 0 {
				fmt.Printf("no suggestions for %q\n", query)
				return
			}
			lines := make([]string, 0, len(published))
			for _, rec := range published {
				lines = append(lines, fmt.Sprintf("%s (%d)", rec.Name, rec.Weight))
			}
			fmt.Printf("suggestions for %q: %s\n", query, strings.Join(lines, ", "))
		}
		controller.Debouncer().OnError = func(query string, err error) {
			metrics.RecordSuggestDispatch(false)
			fmt.Printf("suggestion lookup for %q failed: %v\n", query, err)
		}

		// Poll the limiter once per second and print transitions only.
		reporterCtx, stopReporter := context.WithCancel(cmd.Context())
		defer stopReporter()
		var wasLimited bool
		reporter := engine.NewReporter(engine.DefaultPollInterval, controller.ErrorState, func(state gate.ErrorState) {
			switch {
			case state.Limited:
				fmt.Printf("rate limited: retry in %d second(s)\n", state.RemainingSeconds)
				wasLimited = true
			case wasLimited:
				fmt.Println("rate limit cleared")
				wasLimited = false
			}
		})
		go reporter.Run(reporterCtx)

		fmt.Print(ascii.DrawBox(fmt.Sprintf(
			"querygate live session\n\ncatalog: %d record(s)\nbudget: %d search(es) per %s\ntype to see suggestions, /search <query> to search, /quit to exit",
			idx.Len(), cfg.Limiter.MaxRequests, cfg.Limiter.Window), 0))
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			switch {
			case line == "/quit":
				return nil

			case line == "/limit":
				state := controller.ErrorState()
				if state.Limited {
					fmt.Printf("limited, retry in %d second(s)\n", state.RemainingSeconds)
				} else {
					fmt.Println("not limited")
				}

			case strings.HasPrefix(line, "/search "):
				query := strings.TrimSpace(strings.TrimPrefix(line, "/search "))
				admission, err := controller.Search(cmd.Context(), query)
				if err != nil {
					if errors.Is(err, engine.ErrQueryTooShort) {
						fmt.Printf("query must be at least %d character(s)\n", cfg.Suggest.MinQueryLength)
						continue
					}
					fmt.Printf("search failed: %v\n", err)
					continue
				}
				metrics.RecordAdmission(admission.Admitted)
				if !admission.Admitted {
					state := controller.ErrorState()
					fmt.Printf("rate limited: retry in %d second(s)\n", state.RemainingSeconds)
					continue
				}
				fmt.Printf("%d result(s) for %q\n", len(admission.Records), query)
				for _, rec := range admission.Records {
					fmt.Printf("  %s - %s\n", rec.Name, rec.Description)
				}

			default:
				controller.OnInput(line)
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(liveCmd)
}
