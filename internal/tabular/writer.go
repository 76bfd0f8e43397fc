// Package tabular turns query results into stable display cells and
// renders them in the supported output formats.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an output encoding for tabular data.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// UnknownFormatError reports a format value outside the supported set.
type UnknownFormatError struct {
	Value string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q", e.Value)
}

// Hint implements the hint interface used by the root error printer.
func (e *UnknownFormatError) Hint() string {
	return "valid formats: table, json, csv, yaml"
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", &UnknownFormatError{Value: s}
	}
}

// resultDocument is the serialized shape of the json and yaml formats.
// Columns stay an explicit ordered list so no format loses column order.
type resultDocument struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Write renders result to w in the given format.
func Write(w io.Writer, result *Result, format Format) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, result.RenderTable())
		return err

	case FormatJSON:
		data, err := json.MarshalIndent(resultDocument{
			Columns: result.Columns,
			Rows:    result.Rows,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(result.Columns); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, row := range result.Rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatYAML:
		data, err := yaml.Marshal(resultDocument{
			Columns: result.Columns,
			Rows:    result.Rows,
		})
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err

	default:
		return &UnknownFormatError{Value: string(format)}
	}
}
