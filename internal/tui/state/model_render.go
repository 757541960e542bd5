package state

import (
	"strings"

	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/tui/render"
)

const (
	menuRow = 1
	menuCol = 2
)

// View implements tea.Model.
func (m *Model) View() string {
	var s strings.Builder
	s.WriteString(m.tabBar())
	s.WriteString("\n")

	body := m.pageView()
	switch m.overlay {
	case overlayMenu:
		body = render.Overlay(body, render.Menu(m.menuState()), menuRow-1, menuCol)
	case overlayPopup:
		body = render.Overlay(body, render.Menu(m.popupState()), menuRow-1, menuCol)
	}
	s.WriteString(body)
	s.WriteString("\n")
	s.WriteString(m.footer())
	return s.String()
}

func (m *Model) tabBar() string {
	holder, selecting := m.background.ActiveTab()
	tabs := m.browser.Tabs()
	items := make([]render.TabItem, 0, len(tabs))
	for _, tab := range tabs {
		loading, _ := m.browser.LoadState(tab.ID)
		items = append(items, render.TabItem{
			Title:     tab.Title,
			URL:       tab.URL,
			Active:    tab.Active,
			Loading:   loading,
			Selecting: selecting && holder == tab.ID,
		})
	}
	return render.TabBar(render.TabBarState{
		Tabs:        items,
		WindowCount: len(m.browser.Windows()),
		Width:       m.width,
	})
}

func (m *Model) pageView() string {
	height := m.pageHeight()
	state := render.PageState{Width: m.width, Height: height}

	tab, ok := m.activeTab()
	if !ok {
		return render.Page(state)
	}
	p := m.browser.Page(tab.ID)
	if p == nil {
		return render.Page(state)
	}

	state.Doc = p.Document()
	state.Scroll = int(p.ScrollOffset().Y)
	state.Markers = p.Markers()
	if on, style := p.BodyMarker(); on {
		state.Highlight = style
	}
	if rect, style, visible := p.SelectionBox(); visible {
		state.ShowBox = true
		state.Box = rect
		state.BoxStyle = style
	}
	return render.Page(state)
}

func (m *Model) footer() string {
	state := render.FooterState{Width: m.width, Help: m.help.View(m.keys)}
	if m.overlay == overlayPrompt {
		state.Prompt = m.input.View()
	}
	state.Status, state.HasStatus = m.status.Current()
	if c := m.activeController(); c != nil {
		if mode, active := c.Mode(); active {
			state.Mode = strings.ToUpper(mode.String())
		}
	}
	return render.Footer(state)
}

func (m *Model) menuState() render.MenuState {
	state := render.MenuState{Title: "Context menu", Cursor: m.cursor, Empty: "context menu disabled"}
	if m.menu == nil {
		return state
	}
	for _, e := range m.menu.Entries() {
		state.Items = append(state.Items, e.Title)
	}
	return state
}

func (m *Model) popupState() render.MenuState {
	items := make([]string, 0, len(popupModes))
	for _, mode := range popupModes {
		if mode == protocol.ModeCopy {
			items = append(items, "Select links to copy")
			continue
		}
		items = append(items, "Select links to open")
	}
	return render.MenuState{Title: "area-links", Items: items, Cursor: m.cursor}
}
