package tui

import "github.com/charmbracelet/bubbles/key"

type editorKeyMap struct {
	Submit          key.Binding
	Cancel          key.Binding
	Left            key.Binding
	Right           key.Binding
	WordLeft        key.Binding
	WordRight       key.Binding
	Home            key.Binding
	End             key.Binding
	Backspace       key.Binding
	Delete          key.Binding
	KillWordBack    key.Binding
	KillWordForward key.Binding
	KillToStart     key.Binding
	KillToEnd       key.Binding
}

var editorKeys = editorKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "cancel"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "ctrl+b"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "ctrl+f"),
	),
	WordLeft: key.NewBinding(
		key.WithKeys("alt+b", "ctrl+left"),
	),
	WordRight: key.NewBinding(
		key.WithKeys("alt+f", "ctrl+right"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "ctrl+a"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "ctrl+e"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace", "ctrl+h"),
	),
	Delete: key.NewBinding(
		key.WithKeys("delete"),
	),
	KillWordBack: key.NewBinding(
		key.WithKeys("ctrl+w", "alt+backspace"),
	),
	KillWordForward: key.NewBinding(
		key.WithKeys("alt+d"),
	),
	KillToStart: key.NewBinding(
		key.WithKeys("ctrl+u"),
	),
	KillToEnd: key.NewBinding(
		key.WithKeys("ctrl+k"),
	),
}

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var menuKeys = menuKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "ctrl+p"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "ctrl+n"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d", "esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// ShortHelp lists the bindings shown on the menu's instruction line.
func (k menuKeyMap) ShortHelp(multiple bool) []key.Binding {
	if multiple {
		return []key.Binding{k.Up, k.Down, k.Toggle, k.Submit, k.Cancel}
	}
	return []key.Binding{k.Up, k.Down, k.Submit, k.Cancel}
}
