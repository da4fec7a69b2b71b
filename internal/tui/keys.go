package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Policy  key.Binding
	Block   key.Binding
	Reload  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Policy:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "set policy")),
	Block:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "keep shown")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload config")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Policy, k.Block, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
