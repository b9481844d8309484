package output

import (
	"encoding/json"

	"github.com/querygate/querygate/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatResult renders a lookup result as JSON.
func (f *JSONFormatter) FormatResult(result *core.LookupResult) (string, error) {
	if result == nil {
		return "null", nil
	}

	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
