// Package tui implements the interactive result pager.
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the pager.
type KeyMap struct {
	NextPage key.Binding
	PrevPage key.Binding

	ScrollDown key.Binding
	ScrollUp   key.Binding
	PageDown   key.Binding
	PageUp     key.Binding

	First key.Binding
	Last  key.Binding

	// Jump commits the page number typed as digits.
	Jump key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in binding set. Vim-style movement next to
// arrow keys, bracket keys for whole pages.
var DefaultKeyMap = KeyMap{
	NextPage: key.NewBinding(
		key.WithKeys("]", "right", "l"),
		key.WithHelp("]/→/l", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("[", "left", "h"),
		key.WithHelp("[/←/h", "previous page"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "scroll ten"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "scroll ten up"),
	),
	First: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "first page"),
	),
	Last: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "last page"),
	),
	Jump: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("1..9 enter", "jump to page"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.First, k.Last},
		{k.ScrollDown, k.ScrollUp, k.PageDown, k.PageUp},
		{k.Jump, k.Help, k.Quit},
	}
}
