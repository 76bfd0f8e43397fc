// Package tui implements the interactive result pager.
package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/mbrcli/mbr/internal/tabular"
)

// Options configure a pager run.
type Options struct {
	// Title is shown above the table.
	Title string

	// NoFullscreen prints the whole result statically even on a
	// terminal.
	NoFullscreen bool
}

type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// Run pages source interactively when out is a terminal, and prints
// every row statically otherwise.
func Run(ctx context.Context, out io.Writer, source tabular.Source, opts Options) error {
	if opts.NoFullscreen || !isTerminal(out) {
		return PrintStatic(ctx, out, source, opts.Title)
	}

	program := tea.NewProgram(
		NewModel(ctx, source, opts.Title),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}

// PrintStatic drains source and prints one aligned table.
func PrintStatic(ctx context.Context, out io.Writer, source tabular.Source, title string) error {
	const fetchSize = 500

	var rows [][]string
	offset := 0
	for {
		page, hasMore, err := source.FetchPage(ctx, offset, fetchSize)
		if err != nil {
			return err
		}
		rows = append(rows, page...)
		if !hasMore || len(page) == 0 {
			break
		}
		offset += len(page)
	}

	if title != "" {
		if _, err := fmt.Fprintln(out, title); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out, tabular.RenderTable(source.Columns(), rows))
	return err
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
