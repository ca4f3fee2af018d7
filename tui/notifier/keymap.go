package notifier

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the notification center
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	GotoTop key.Binding
	GotoEnd key.Binding
	// Mutations
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Delete      key.Binding
	Clear       key.Binding
	Refresh     key.Binding
	// Quit
	Quit key.Binding
}

// defaultKeyMap is the default keymap for the notification center
var defaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "ctrl+p"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "ctrl+n"),
		key.WithHelp("↓/j", "down"),
	),
	GotoTop: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to top"),
	),
	GotoEnd: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "go to end"),
	),
	MarkRead: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "mark read"),
	),
	MarkAllRead: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all read"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "x"),
		key.WithHelp("d", "delete"),
	),
	Clear: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "clear all"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpEntries returns the bindings shown in the footer, in display order.
func (k KeyMap) helpEntries() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MarkRead, k.MarkAllRead, k.Delete, k.Clear, k.Refresh, k.Quit}
}
