// Package tui implements the interactive result pager.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mbrcli/mbr/internal/tabular"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// View implements tea.Model. Headers repeat on every page because each
// page is a freshly rendered table.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.fitLine(m.title)))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
	} else {
		b.WriteString(tabular.RenderTable(m.source.Columns(), m.rows))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	var status string
	if m.loading {
		status = m.spinner.View() + " Fetching rows..."
	} else {
		status = fmt.Sprintf("Page %s | Rows %s", m.pageIndicator(), m.rowIndicator())
	}
	if m.jumpDigits != "" {
		status += " | Jump to page: " + m.jumpDigits
	}
	status += " | ? for help"
	return statusStyle.Render(m.fitLine(status))
}

// fitLine truncates s to the viewport width. Title and status must stay
// single lines or the chrome line count drifts.
func (m Model) fitLine(s string) string {
	if m.width <= 0 || runewidth.StringWidth(s) <= m.width {
		return s
	}
	return runewidth.Truncate(s, m.width, "...")
}

// pageIndicator is "x/y", with an unknown page count shown as "?".
func (m Model) pageIndicator() string {
	if m.state.TotalKnown {
		return fmt.Sprintf("%d/%d", m.state.Page(), m.state.Pages())
	}
	return fmt.Sprintf("%d/?", m.state.Page())
}

// rowIndicator is "a-b/total", with the total shown as "N+" while a lazy
// source still has rows past the highest one seen.
func (m Model) rowIndicator() string {
	if len(m.rows) == 0 {
		return fmt.Sprintf("0-0/%d", m.state.Total)
	}
	lo := m.state.Offset + 1
	hi := m.state.Offset + len(m.rows)
	if m.state.TotalKnown {
		return fmt.Sprintf("%d-%d/%d", lo, hi, m.state.Total)
	}
	return fmt.Sprintf("%d-%d/%d+", lo, hi, hi)
}
