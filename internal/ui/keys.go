package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Home    key.Binding
	End     key.Binding
	Open    key.Binding
	Back    key.Binding
	Refresh key.Binding
	Dismiss key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
	Home:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	End:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "comments")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Retry:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// storyHelp and commentHelp implement help.KeyMap for each screen.
type storyHelp struct{ keyMap }

func (k storyHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Open, k.Refresh, k.Quit}
}

func (k storyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Home, k.End},
		{k.Open, k.Refresh, k.Dismiss, k.Retry, k.Quit},
	}
}

type commentHelp struct{ keyMap }

func (k commentHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Back, k.Refresh, k.Quit}
}

func (k commentHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Home, k.End},
		{k.Back, k.Refresh, k.Dismiss, k.Retry, k.Quit},
	}
}
