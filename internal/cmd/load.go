package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/querygate/querygate/internal/core"
)

// seedFile is the on-disk format accepted by the load command.
type seedFile struct {
	Records []seedRecord `yaml:"records"`
}

type seedRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Weight      int    `yaml:"weight"`
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load catalog records from a YAML seed file",
	Long: `Load catalog records into the store from a YAML seed file.

The file holds a records list; existing records with the same id are
replaced. Use "-" to read from stdin.

Example seed file:
  records:
    - id: alpha
      name: Alpha Service
      description: Primary ingestion service
      weight: 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}
		if len(seed.Records) == 0 {
			return fmt.Errorf("seed file contains no records")
		}

		records := make([]core.Record, 0, len(seed.Records))
		for _, r := range seed.Records {
			records = append(records, core.Record{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				Weight:      r.Weight,
			})
		}

		db, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.UpsertRecords(cmd.Context(), records); err != nil {
			return err
		}

		total, err := db.CountRecords(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d record(s), catalog now holds %d\n", len(records), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
