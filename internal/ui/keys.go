package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	Back      key.Binding
	Help      key.Binding
	Compose   key.Binding
	Submit    key.Binding
	NextField key.Binding
	Refresh   key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	PageSize  key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Dismiss   key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Compose:   key.NewBinding(key.WithKeys("a", "c"), key.WithHelp("a", "add comment")),
	Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
	PrevPage:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/left", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/right", "next page")),
	FirstPage: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	LastPage:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	PageSize:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "page size")),
	Delete:    key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Dismiss:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "dismiss error")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Compose, k.Delete, k.PrevPage, k.NextPage, k.PageSize, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Delete, k.Dismiss},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage, k.PageSize},
		{k.Compose, k.Submit, k.NextField, k.Back},
		{k.Refresh, k.Help, k.Quit},
	}
}
