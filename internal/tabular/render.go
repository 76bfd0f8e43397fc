// Package tabular turns query results into stable display cells and
// renders them in the supported output formats.
package tabular

import "github.com/jedib0t/go-pretty/v6/table"

// RenderTable renders rows as an aligned table with the header on top.
// The pager calls this per page, so headers repeat on every page.
func RenderTable(columns []string, rows [][]string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		t.AppendRow(cells)
	}

	return t.Render()
}

// RenderTable renders the whole result as one aligned table.
func (r *Result) RenderTable() string {
	return RenderTable(r.Columns, r.Rows)
}
