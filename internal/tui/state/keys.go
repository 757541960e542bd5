package state

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
)

type keyMap struct {
	Activate     key.Binding
	ActivateCopy key.Binding
	Menu         key.Binding
	Popup        key.Binding
	Cancel       key.Binding
	OpenURL      key.Binding
	GoURL        key.Binding
	Reload       key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	CloseTab     key.Binding
	NextWindow   key.Binding
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Confirm      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Activate:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select to open")),
		ActivateCopy: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "select to copy")),
		Menu:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Popup:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "popup")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		OpenURL:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),
		GoURL:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to url")),
		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		NextTab:      key.NewBinding(key.WithKeys("tab", "L"), key.WithHelp("tab", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab", "H"), key.WithHelp("shift+tab", "prev tab")),
		CloseTab:     key.NewBinding(key.WithKeys("x", "ctrl+w"), key.WithHelp("x", "close tab")),
		NextWindow:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "next window")),
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " "), key.WithHelp("pgdn", "page down")),
		Confirm:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.ActivateCopy, k.OpenURL, k.NextTab, k.Menu, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Activate, k.ActivateCopy, k.Menu, k.Popup, k.Cancel},
		{k.OpenURL, k.GoURL, k.Reload, k.CloseTab},
		{k.NextTab, k.PrevTab, k.NextWindow},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

// Shortcuts maps the selection command names to the first key bound to
// them, for display next to menu entries.
func (k keyMap) Shortcuts() map[string]string {
	return map[string]string{
		orchestrator.CommandActivate:     k.Activate.Keys()[0],
		orchestrator.CommandActivateCopy: k.ActivateCopy.Keys()[0],
	}
}

// Shortcuts returns the default command shortcuts.
func Shortcuts() map[string]string {
	return defaultKeyMap().Shortcuts()
}
