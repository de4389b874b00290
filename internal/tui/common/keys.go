package common

import "github.com/charmbracelet/bubbles/key"

// FormKeyMap defines key bindings for form screens
type FormKeyMap struct {
	Submit   key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// DefaultFormKeyMap returns key bindings for form screens
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns a short help text for form screens
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Submit, k.Back}
}

// FullHelp returns full help for form screens
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Submit, k.Back, k.Quit},
	}
}

// ListKeyMap defines key bindings for the hive list
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Focus    key.Binding
	Refresh  key.Binding
	Settings key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// DefaultListKeyMap returns key bindings for the hive list
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "new hive"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a short help text for the hive list
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Edit, k.Delete, k.Focus, k.Refresh, k.Settings, k.Quit}
}

// FullHelp returns full help for the hive list
func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.Edit, k.Delete},
		{k.Focus, k.Refresh, k.Settings, k.Quit},
	}
}
