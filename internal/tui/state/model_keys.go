package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
)

// handleKeyMsg processes keyboard input. Open overlays take keys first.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayPrompt:
		return m.handlePromptKey(msg)
	case overlayMenu, overlayPopup:
		return m, m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		if c := m.activeController(); c != nil {
			c.KeyDown("escape")
		}
		m.status.Clear()
		return m, nil
	case key.Matches(msg, m.keys.Activate):
		return m, m.command(orchestrator.CommandActivate)
	case key.Matches(msg, m.keys.ActivateCopy):
		return m, m.command(orchestrator.CommandActivateCopy)
	case key.Matches(msg, m.keys.Menu):
		m.openMenu()
		return m, nil
	case key.Matches(msg, m.keys.Popup):
		m.overlay, m.cursor = overlayPopup, 0
		return m, nil
	case key.Matches(msg, m.keys.OpenURL):
		return m, m.openPrompt(promptNewTab, "")
	case key.Matches(msg, m.keys.GoURL):
		tab, _ := m.activeTab()
		return m, m.openPrompt(promptNavigate, tab.URL)
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.NextTab):
		return m, m.run("next tab", "", func(ctx context.Context) error { return m.browser.Cycle(ctx, 1) })
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.run("previous tab", "", func(ctx context.Context) error { return m.browser.Cycle(ctx, -1) })
	case key.Matches(msg, m.keys.NextWindow):
		return m, m.run("next window", "", m.browser.CycleWindow)
	case key.Matches(msg, m.keys.CloseTab):
		return m, m.closeTab()
	case key.Matches(msg, m.keys.Up):
		m.scroll(-1)
	case key.Matches(msg, m.keys.Down):
		m.scroll(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scroll(-m.pageHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.scroll(m.pageHeight())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// command runs a keyboard shortcut against the focused tab.
func (m *Model) command(name string) tea.Cmd {
	tab, ok := m.activeTab()
	if !ok {
		m.status.Warning("no tab to select in")
		return nil
	}
	return m.run(name, "", func(ctx context.Context) error {
		return m.background.OnCommand(ctx, name, tab)
	})
}

func (m *Model) openMenu() {
	tab, ok := m.activeTab()
	if !ok {
		m.status.Warning("no tab for the context menu")
		return
	}
	m.overlay, m.cursor, m.menuTab = overlayMenu, 0, tab
}

func (m *Model) menuLen() int {
	if m.overlay == overlayPopup {
		return len(popupModes)
	}
	if m.menu == nil {
		return 0
	}
	return len(m.menu.Entries())
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Menu) && m.overlay == overlayMenu,
		key.Matches(msg, m.keys.Popup) && m.overlay == overlayPopup:
		m.overlay = overlayNone
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.menuLen()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Confirm):
		return m.chooseOverlayItem()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	return nil
}

func (m *Model) chooseOverlayItem() tea.Cmd {
	kind := m.overlay
	m.overlay = overlayNone

	if kind == overlayPopup {
		mode := popupModes[m.cursor]
		return m.run("popup", "", func(ctx context.Context) error {
			_, err := m.background.HandleMessage(ctx, ports.Tab{}, protocol.TriggerSelectionFromPopup{Mode: mode})
			return err
		})
	}

	if m.menu == nil {
		return nil
	}
	entries := m.menu.Entries()
	if m.cursor >= len(entries) {
		return nil
	}
	id, tab := entries[m.cursor].ID, m.menuTab
	return m.run("menu", "", func(ctx context.Context) error {
		return m.background.OnMenuClicked(ctx, id, tab)
	})
}

func (m *Model) openPrompt(target promptTarget, value string) tea.Cmd {
	m.overlay, m.prompt = overlayPrompt, target
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		raw := NormalizeURL(m.input.Value())
		target := m.prompt
		m.closePrompt()
		if raw == "" {
			return m, nil
		}
		if target == promptNavigate {
			if tab, ok := m.activeTab(); ok {
				return m, m.run("navigate", "", func(ctx context.Context) error {
					return m.browser.Navigate(ctx, tab.ID, raw)
				})
			}
		}
		return m, m.run("open", "", func(ctx context.Context) error {
			_, err := m.browser.Open(ctx, raw)
			return err
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.overlay = overlayNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) reload() tea.Cmd {
	tab, ok := m.activeTab()
	if !ok {
		return nil
	}
	return m.run("reload", "", func(ctx context.Context) error {
		return m.browser.Navigate(ctx, tab.ID, tab.URL)
	})
}

func (m *Model) closeTab() tea.Cmd {
	tab, ok := m.activeTab()
	if !ok {
		return nil
	}
	return m.run("close tab", fmt.Sprintf("closed %s", tab.URL), func(ctx context.Context) error {
		return m.browser.Close(ctx, tab.ID)
	})
}

// scroll moves the focused page. A running drag follows the scroll.
func (m *Model) scroll(dy int) {
	tab, ok := m.activeTab()
	if !ok {
		return
	}
	p := m.browser.Page(tab.ID)
	if p == nil || !p.ScrollBy(dy) {
		return
	}
	if c := m.browser.Controller(tab.ID); c != nil {
		c.Scroll()
	}
}

// NormalizeURL adds https:// to bare hosts. Other schemes and about: URLs
// are kept.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") || strings.HasPrefix(raw, "about:") {
		return raw
	}
	return "https://" + raw
}
