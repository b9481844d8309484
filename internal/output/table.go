package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/querygate/querygate/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatResult renders a lookup result as a table.
func (f *TableFormatter) FormatResult(result *core.LookupResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Description", "Weight"})

	for _, rec := range result.Records {
		t.AppendRow(table.Row{rec.ID, rec.Name, rec.Description, rec.Weight})
	}

	summary := fmt.Sprintf("%d result(s) for %q", len(result.Records), result.Query)
	if result.FromCache {
		summary += " (cached)"
	}
	t.AppendFooter(table.Row{"", "", summary, ""})

	return t.Render(), nil
}
