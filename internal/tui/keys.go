package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Dashboard key.Binding
	Jumps     key.Binding
	Invoices  key.Binding
	NextTab   key.Binding

	// Movement
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Invoice actions
	New     key.Binding
	Lock    key.Binding
	Send    key.Binding
	Pay     key.Binding
	Reopen  key.Binding
	Delete  key.Binding
	Confirm key.Binding

	// Jump list
	Filter key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Dashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
	Jumps:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "jumps")),
	Invoices:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "invoices")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new draft")),
	Lock:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lock")),
	Send:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send")),
	Pay:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paid")),
	Reopen:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reopen")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
}
