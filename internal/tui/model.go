// Package tui implements the interactive result pager.
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mbrcli/mbr/internal/tabular"
)

const (
	// tableChromeLines is what the table frame consumes: top border,
	// header row, header separator, bottom border.
	tableChromeLines = 4

	// scrollStep is the row delta for PgUp/PgDn.
	scrollStep = 10
)

// pageLoadedMsg delivers one fetched window of rows.
type pageLoadedMsg struct {
	requestID string
	offset    int
	rows      [][]string
	hasMore   bool
	err       error
}

// Model is the bubbletea model for the pager. One fetch is in flight at
// most; results are tagged with a request identifier so a superseded
// fetch can never apply stale rows.
type Model struct {
	ctx    context.Context
	source tabular.Source
	title  string

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	state   tabular.PageState
	rows    [][]string
	hasMore bool

	width  int
	height int
	ready  bool

	loading   bool
	requestID string

	jumpDigits string
	showHelp   bool
	err        error
}

// NewModel builds a pager over source. The first fetch starts when the
// initial window size arrives.
func NewModel(ctx context.Context, source tabular.Source, title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.ShowAll = true

	state := tabular.PageState{PageSize: 1}
	if total, known := source.Total(); known {
		state.Total = total
		state.TotalKnown = true
	}

	return Model{
		ctx:     ctx,
		source:  source,
		title:   title,
		keys:    DefaultKeyMap,
		help:    h,
		spinner: s,
		state:   state,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.state.PageSize = tabular.PageSizeFor(msg.Height, m.chromeLines())
		m.state.Offset = m.state.Clamp(m.state.Offset)
		m.ready = true
		return m.startFetch()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		return m.applyPage(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// fetchPage returns a command that loads one window of rows and tags the
// result with requestID.
func fetchPage(ctx context.Context, source tabular.Source, requestID string, offset, size int) tea.Cmd {
	return func() tea.Msg {
		rows, hasMore, err := source.FetchPage(ctx, offset, size)
		return pageLoadedMsg{
			requestID: requestID,
			offset:    offset,
			rows:      rows,
			hasMore:   hasMore,
			err:       err,
		}
	}
}

// startFetch begins loading the window at the current offset under a
// fresh request identifier.
func (m Model) startFetch() (tea.Model, tea.Cmd) {
	m.requestID = uuid.NewString()
	m.loading = true
	return m, tea.Batch(
		fetchPage(m.ctx, m.source, m.requestID, m.state.Offset, m.state.PageSize),
		m.spinner.Tick,
	)
}

// applyPage installs a fetched window. Results from a superseded request
// are discarded. An empty window past the end re-clamps to the last real
// window when the total is known, and falls back to the first page when
// a lazy source has not revealed its end yet.
func (m Model) applyPage(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.requestID != m.requestID {
		return m, nil
	}
	m.loading = false

	if msg.err != nil {
		m.err = msg.err
		return m, tea.Quit
	}

	m.rows = msg.rows
	m.hasMore = msg.hasMore
	if total, known := m.source.Total(); known {
		m.state.Total = total
		m.state.TotalKnown = true
	}

	if len(msg.rows) == 0 && msg.offset > 0 {
		if m.state.TotalKnown && m.state.Total > 0 {
			if clamped := m.state.Clamp(msg.offset); clamped != msg.offset {
				m.state.Offset = clamped
				return m.startFetch()
			}
		} else if !m.state.TotalKnown {
			m.state.Offset = 0
			return m.startFetch()
		}
	}
	return m, nil
}

// handleKey routes one key press. Keys that would start a fetch are
// ignored while one is already in flight.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		if msg.String() == "esc" && m.jumpDigits != "" {
			m.jumpDigits = ""
			return m, nil
		}
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return m, nil
	}

	if digit, ok := keyDigit(msg); ok {
		m.jumpDigits += digit
		return m, nil
	}
	if msg.Type == tea.KeyBackspace && m.jumpDigits != "" {
		m.jumpDigits = m.jumpDigits[:len(m.jumpDigits)-1]
		return m, nil
	}

	if key.Matches(msg, m.keys.Jump) {
		if m.jumpDigits == "" {
			return m, nil
		}
		page, err := strconv.Atoi(m.jumpDigits)
		m.jumpDigits = ""
		if err != nil {
			return m, nil
		}
		return m.navigate(func(s *tabular.PageState) { s.JumpToPage(page) })
	}

	switch {
	case key.Matches(msg, m.keys.NextPage):
		return m.navigate((*tabular.PageState).NextPage)
	case key.Matches(msg, m.keys.PrevPage):
		return m.navigate((*tabular.PageState).PrevPage)
	case key.Matches(msg, m.keys.ScrollDown):
		return m.navigate(func(s *tabular.PageState) { s.Advance(1) })
	case key.Matches(msg, m.keys.ScrollUp):
		return m.navigate(func(s *tabular.PageState) { s.Advance(-1) })
	case key.Matches(msg, m.keys.PageDown):
		return m.navigate(func(s *tabular.PageState) { s.Advance(scrollStep) })
	case key.Matches(msg, m.keys.PageUp):
		return m.navigate(func(s *tabular.PageState) { s.Advance(-scrollStep) })
	case key.Matches(msg, m.keys.First):
		return m.navigate((*tabular.PageState).First)
	case key.Matches(msg, m.keys.Last):
		return m.navigate((*tabular.PageState).Last)
	}
	return m, nil
}

// navigate applies move to the page state and fetches the new window
// when the offset changed.
func (m Model) navigate(move func(*tabular.PageState)) (tea.Model, tea.Cmd) {
	if m.loading || !m.ready {
		return m, nil
	}
	before := m.state.Offset
	move(&m.state)
	if m.state.Offset == before {
		return m, nil
	}
	return m.startFetch()
}

// chromeLines counts the fixed lines around the row area: the table
// frame, the status line, and the optional title.
func (m Model) chromeLines() int {
	lines := tableChromeLines + 1
	if m.title != "" {
		lines++
	}
	return lines
}

func keyDigit(msg tea.KeyMsg) (string, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return "", false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return "", false
	}
	return string(r), true
}
