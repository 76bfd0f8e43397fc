// Package tabular turns query results into stable display cells and
// renders them in the supported output formats.
package tabular

// Result is an immutable table of display strings. Cells are normalized
// exactly once at construction; every output format and the pager consume
// the same strings, so switching formats never changes a value.
type Result struct {
	Columns []string
	Rows    [][]string
}

// NewResult normalizes raw cells into a Result.
func NewResult(columns []string, rows [][]any, opts Options) *Result {
	result := &Result{
		Columns: columns,
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = FormatCell(cell, opts)
		}
		result.Rows[i] = cells
	}
	return result
}

// FromStrings wraps already-normalized rows without reprocessing them.
func FromStrings(columns []string, rows [][]string) *Result {
	return &Result{Columns: columns, Rows: rows}
}

// RowCount returns the number of data rows.
func (r *Result) RowCount() int {
	return len(r.Rows)
}

// Slice returns the window of rows starting at offset, at most limit long,
// clamped to the table bounds.
func (r *Result) Slice(offset, limit int) [][]string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.Rows) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(r.Rows) {
		end = len(r.Rows)
	}
	return r.Rows[offset:end]
}

// Limit returns a copy of the result truncated to at most n rows. n <= 0
// means no limit.
func (r *Result) Limit(n int) *Result {
	if n <= 0 || n >= len(r.Rows) {
		return r
	}
	return &Result{Columns: r.Columns, Rows: r.Rows[:n]}
}

// Offset returns a copy of the result with the first n rows dropped.
// n <= 0 means no offset; past the end the result is empty.
func (r *Result) Offset(n int) *Result {
	if n <= 0 {
		return r
	}
	if n >= len(r.Rows) {
		return &Result{Columns: r.Columns}
	}
	return &Result{Columns: r.Columns, Rows: r.Rows[n:]}
}
