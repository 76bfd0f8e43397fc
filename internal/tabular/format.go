// Package tabular turns query results into stable display cells and
// renders them in the supported output formats.
package tabular

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth is the display width a cell may occupy before truncation.
const maxCellWidth = 100

// Options control cell normalization.
type Options struct {
	// Full disables long-string truncation.
	Full bool
}

// FormatCell renders one raw cell value as its display string. The mapping
// does not depend on the output format chosen later:
//
//	null             "-"
//	string           as is, width-truncated with a "..." tail unless Full
//	number           exact wire text
//	bool             "true" / "false"
//	array            "[]" or "[N items]"
//	object           "{}" or "{N items}"
func FormatCell(v any, opts Options) string {
	switch cell := v.(type) {
	case nil:
		return "-"
	case string:
		return truncate(cell, opts.Full)
	case json.Number:
		return cell.String()
	case bool:
		return strconv.FormatBool(cell)
	case float64:
		return strconv.FormatFloat(cell, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(cell), 'f', -1, 32)
	case int:
		return strconv.Itoa(cell)
	case int64:
		return strconv.FormatInt(cell, 10)
	case []any:
		if len(cell) == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", len(cell))
	case map[string]any:
		if len(cell) == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d items}", len(cell))
	default:
		return truncate(fmt.Sprintf("%v", cell), opts.Full)
	}
}

// truncate cuts s to maxCellWidth display cells including the ellipsis.
// Width-aware so double-width runes count double.
func truncate(s string, full bool) string {
	if full || runewidth.StringWidth(s) <= maxCellWidth {
		return s
	}
	return runewidth.Truncate(s, maxCellWidth, "...")
}
