package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the terminal front end
type KeyMap struct {
	// General
	Help key.Binding
	Quit key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Editing the focused control
	Prev  key.Binding
	Next  key.Binding
	Clear key.Binding

	// Actions
	Open     key.Binding
	Activate key.Binding

	// Prompt
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),

		Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:  key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/l", "next")),
		Clear: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "clear choice")),

		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open image")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
