package output

import (
	"fmt"
	"strings"

	"github.com/querygate/querygate/internal/core"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatResult renders a lookup result as markdown.
func (f *MarkdownFormatter) FormatResult(result *core.LookupResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Results for %q\n\n", result.Query)
	b.WriteString("| ID | Name | Description | Weight |\n")
	b.WriteString("|----|------|-------------|--------|\n")
	for _, rec := range result.Records {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", rec.ID, rec.Name, escapePipes(rec.Description), rec.Weight)
	}
	if result.FromCache {
		b.WriteString("\n_served from cache_\n")
	}
	return b.String(), nil
}

func escapePipes(value string) string {
	return strings.ReplaceAll(value, "|", `\|`)
}
