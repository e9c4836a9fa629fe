package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the simulator TUI.
type KeyMap struct {
	Power    key.Binding
	Espresso key.Binding
	Steam    key.Binding
	HotWater key.Binding
	Flush    key.Binding
	Stop     key.Binding
	Ghc      key.Binding
	Connect  key.Binding
	NextTab  key.Binding
	ClearLog key.Binding
	Quit     key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Power: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "power"),
		),
		Espresso: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "espresso"),
		),
		Steam: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "steam"),
		),
		HotWater: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "hot water"),
		),
		Flush: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "flush"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "stop"),
		),
		Ghc: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "cycle GHC mode"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch tab"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns keybindings to show in the help view (horizontal).
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.Espresso, k.Steam, k.HotWater, k.Flush, k.Stop, k.Connect, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.Espresso, k.Steam, k.HotWater, k.Flush, k.Stop},
		{k.Ghc, k.Connect, k.NextTab, k.ClearLog, k.Help, k.Quit},
	}
}
