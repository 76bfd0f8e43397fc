// Package tabular turns query results into stable display cells and
// renders them in the supported output formats.
package tabular

import "context"

// Source supplies pages of normalized rows to a display session.
type Source interface {
	// Columns returns the header set.
	Columns() []string
	// FetchPage returns up to size rows starting at offset and whether
	// rows exist past the returned window.
	FetchPage(ctx context.Context, offset, size int) (rows [][]string, hasMore bool, err error)
	// Total returns the row count when known.
	Total() (int, bool)
}

// SliceSource serves a fully materialized Result.
type SliceSource struct {
	result *Result
}

// NewSliceSource wraps result as a Source.
func NewSliceSource(result *Result) *SliceSource {
	return &SliceSource{result: result}
}

// Columns implements Source.
func (s *SliceSource) Columns() []string {
	return s.result.Columns
}

// FetchPage implements Source.
func (s *SliceSource) FetchPage(_ context.Context, offset, size int) ([][]string, bool, error) {
	rows := s.result.Slice(offset, size)
	return rows, offset+len(rows) < s.result.RowCount(), nil
}

// Total implements Source.
func (s *SliceSource) Total() (int, bool) {
	return s.result.RowCount(), true
}

// FetchFunc fetches one window of rows.
type FetchFunc func(ctx context.Context, offset, size int) ([][]string, bool, error)

// FuncSource adapts a fetch callback as a lazy Source. The total stays
// unknown until a fetch reports the end of the data.
type FuncSource struct {
	columns  []string
	fetch    FetchFunc
	end      int
	endKnown bool
}

// NewFuncSource builds a lazy Source over fetch.
func NewFuncSource(columns []string, fetch FetchFunc) *FuncSource {
	return &FuncSource{columns: columns, fetch: fetch}
}

// Columns implements Source.
func (s *FuncSource) Columns() []string {
	return s.columns
}

// FetchPage implements Source. A window that contains the final row
// fixes the total. An empty window past the end only bounds it, so the
// total stays unknown there.
func (s *FuncSource) FetchPage(ctx context.Context, offset, size int) ([][]string, bool, error) {
	rows, hasMore, err := s.fetch(ctx, offset, size)
	if err != nil {
		return nil, false, err
	}
	if !hasMore && (offset == 0 || len(rows) > 0) {
		end := offset + len(rows)
		if !s.endKnown || end > s.end {
			s.end = end
			s.endKnown = true
		}
	}
	return rows, hasMore, nil
}

// Total implements Source.
func (s *FuncSource) Total() (int, bool) {
	return s.end, s.endKnown
}

// PageState tracks the visible row window of a display session. Offsets
// move only through the navigation methods, which clamp every request into
// the valid range; out-of-bounds navigation is recovered here and never
// surfaces as an error.
type PageState struct {
	Offset     int
	PageSize   int
	Total      int
	TotalKnown bool
}

// PageSizeFor derives rows per page from the viewport height minus the
// lines consumed by chrome (header, borders, status line). Never below 1.
func PageSizeFor(viewportHeight, chromeLines int) int {
	size := viewportHeight - chromeLines
	if size < 1 {
		return 1
	}
	return size
}

// maxOffset is the highest offset that still shows rows. Call only when
// the total is known.
func (p *PageState) maxOffset() int {
	if p.Total <= p.PageSize {
		return 0
	}
	return p.Total - p.PageSize
}

// Clamp folds target into the valid offset range.
func (p *PageState) Clamp(target int) int {
	if target < 0 {
		return 0
	}
	if p.TotalKnown {
		if max := p.maxOffset(); target > max {
			return max
		}
	}
	return target
}

// Advance moves the window by delta rows, clamped.
func (p *PageState) Advance(delta int) {
	p.Offset = p.Clamp(p.Offset + delta)
}

// NextPage moves forward one full page.
func (p *PageState) NextPage() {
	p.Advance(p.PageSize)
}

// PrevPage moves back one full page.
func (p *PageState) PrevPage() {
	p.Advance(-p.PageSize)
}

// First jumps to the start.
func (p *PageState) First() {
	p.Offset = 0
}

// Last jumps to the final window when the total is known; otherwise it is
// a no-op because the end has not been observed yet.
func (p *PageState) Last() {
	if p.TotalKnown {
		p.Offset = p.maxOffset()
	}
}

// JumpToPage moves to the 1-based page number, clamped.
func (p *PageState) JumpToPage(page int) {
	if page < 1 {
		page = 1
	}
	p.Offset = p.Clamp((page - 1) * p.PageSize)
}

// Page returns the 1-based page number of the current offset.
func (p *PageState) Page() int {
	if p.PageSize <= 0 {
		return 1
	}
	return p.Offset/p.PageSize + 1
}

// Pages returns the total page count, at least 1. Meaningful only when the
// total is known.
func (p *PageState) Pages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	pages := (p.Total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// RowRange returns the 1-based inclusive range of visible rows. An empty
// result reports 0, 0.
func (p *PageState) RowRange() (int, int) {
	if p.TotalKnown && p.Total == 0 {
		return 0, 0
	}
	lo := p.Offset + 1
	hi := p.Offset + p.PageSize
	if p.TotalKnown && hi > p.Total {
		hi = p.Total
	}
	return lo, hi
}
