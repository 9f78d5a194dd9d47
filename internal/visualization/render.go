// Package visualization renders simulation time series as charts and
// tabular exports.
package visualization

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nvandessel/prefgrow/internal/simulation"
)

// Format specifies the output format for a rendered series.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatCSV, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (use 'svg', 'csv', or 'json')", s)
}

// FileName returns dir/base.<format>.
func FileName(dir, base string, f Format) string {
	return filepath.Join(dir, base+"."+string(f))
}

// Chart is the input to every renderer: a finished series and its title.
type Chart struct {
	Title  string
	Series *simulation.Series
}

// label returns the type label for k, falling back to "type k".
func (c Chart) label(k int) string {
	if l := c.Series.Label(k); l != "" {
		return l
	}
	return fmt.Sprintf("type %d", k)
}

// Render writes chart to w in the given format.
func Render(w io.Writer, f Format, chart Chart) error {
	if chart.Series == nil {
		return fmt.Errorf("render %s: series is required", f)
	}
	switch f {
	case FormatSVG:
		return RenderSVG(w, chart)
	case FormatCSV:
		return RenderCSV(w, chart)
	case FormatJSON:
		return RenderJSON(w, chart)
	default:
		return fmt.Errorf("unsupported format %q (use 'svg', 'csv', or 'json')", f)
	}
}
