package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/errors"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T) *page.Document {
	t.Helper()
	doc, err := page.ParseString(`<p><a href="https://a.test/">Alpha</a> and <a href="https://b.test/">Beta</a></p><p>tail</p>`, "https://x.test/", 30)
	require.NoError(t, err)
	return doc
}

func TestPageRendersVisibleRows(t *testing.T) {
	doc := testDoc(t)
	out := Page(PageState{Doc: doc, Width: 30, Height: 3})

	rows := strings.Split(out, "\n")
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha and Beta", strings.TrimRight(rows[0], " "))
	for _, row := range rows {
		assert.Equal(t, 30, lipgloss.Width(row))
	}

	scrolled := strings.Split(Page(PageState{Doc: doc, Width: 30, Height: 2, Scroll: 2}), "\n")
	assert.Equal(t, "tail", strings.TrimSpace(scrolled[0]))
}

func TestPageWithoutDocument(t *testing.T) {
	out := Page(PageState{Width: 4, Height: 2})
	assert.Equal(t, "    \n    ", out)
	assert.Empty(t, Page(PageState{Width: 4}))
}

func TestPageDrawsSelectionBox(t *testing.T) {
	doc := testDoc(t)
	out := Page(PageState{
		Doc:      doc,
		Width:    30,
		Height:   4,
		ShowBox:  true,
		Box:      geometry.Rect{Left: 16.5, Top: 0.5, Right: 22.5, Bottom: 3.5},
		BoxStyle: ports.BoxStyle{Border: settings.BoxStyleSolid},
	})
	rows := strings.Split(out, "\n")
	require.Len(t, rows, 4)
	assert.Equal(t, "┌─────┐", string([]rune(rows[0])[16:23]))
	assert.Equal(t, "└─────┘", string([]rune(rows[3])[16:23]))
	assert.Equal(t, "│", string([]rune(rows[1])[16]))
}

func TestPageBoxKeepsText(t *testing.T) {
	doc := testDoc(t)
	out := Page(PageState{
		Doc:      doc,
		Width:    30,
		Height:   1,
		ShowBox:  true,
		Box:      geometry.Rect{Left: 0.5, Top: 0.5, Right: 8.5, Bottom: 0.5},
		BoxStyle: ports.BoxStyle{Border: settings.BoxStyleDashed},
	})
	assert.True(t, strings.HasPrefix(out, "Alpha"))
	assert.Contains(t, out, "╌")
}

func TestStatusStyle(t *testing.T) {
	assert.Equal(t, linkStyle, StatusStyle(classify.StatusUntouched, ""))
	assert.Equal(t, duplicateStyle, StatusStyle(classify.StatusDuplicate, ""))
	assert.Equal(t, excludedStyle, StatusStyle(classify.StatusExcluded, ""))
	assert.Equal(t, limitExceededStyle, StatusStyle(classify.StatusLimitExceeded, ""))
	assert.True(t, StatusStyle(classify.StatusHighlighted, settings.HighlightInverse).GetReverse())
	assert.True(t, HighlightStyle(settings.HighlightUnderline).GetUnderline())
}

func TestTabBar(t *testing.T) {
	out := TabBar(TabBarState{
		Tabs: []TabItem{
			{Title: "Docs", Active: true, Selecting: true},
			{URL: "https://example.test/a/very/long/path/indeed", Loading: true},
			{},
		},
		Window:      1,
		WindowCount: 2,
	})
	assert.Contains(t, out, "◆ 1:Docs")
	assert.Contains(t, out, "2:https://example.t…"+loadingSymbol)
	assert.Contains(t, out, "3:New tab")
	assert.Contains(t, out, "[win 2/2]")

	assert.LessOrEqual(t, lipgloss.Width(TabBar(TabBarState{Tabs: []TabItem{{Title: "abcdefghijkl"}}, Width: 6})), 6)
}

func TestFooter(t *testing.T) {
	assert.Contains(t, Footer(FooterState{Help: "a select"}), "a select")
	assert.Contains(t, Footer(FooterState{Prompt: "url: x", Help: "a select"}), "url: x")

	out := Footer(FooterState{
		Status:    errors.Message{Text: "copy failed", Type: errors.MessageTypeWarning},
		HasStatus: true,
		Help:      "a select",
		Mode:      "OPEN",
	})
	assert.Contains(t, out, "OPEN")
	assert.Contains(t, out, "warning: copy failed")
	assert.NotContains(t, out, "a select")
}

func TestMenuAndOverlay(t *testing.T) {
	box := Menu(MenuState{Title: "Links", Items: []string{"Open", "Copy"}, Cursor: 1})
	assert.Contains(t, box, "Links")
	assert.Contains(t, box, "  Open")
	assert.Contains(t, box, menuPointer+" Copy")

	empty := Menu(MenuState{Empty: "nothing here"})
	assert.Contains(t, empty, "nothing here")

	base := "aaaa\nbbbb\ncccc"
	out := Overlay(base, "XY\nZW", 1, 2)
	assert.Equal(t, "aaaa\nbbXY\nccZW", out)
	assert.Equal(t, "XY\nbbbb\ncccc", Overlay(base, "XY", 0, 0))
	assert.Equal(t, base, Overlay(base, "XY", 5, 0))
}

func TestAnsiColorNumber(t *testing.T) {
	assert.Equal(t, "34", ansiColorNumber(colors.Blue))
	assert.Equal(t, "", ansiColorNumber("x"))
	assert.Equal(t, "", ansiColorNumber("plain"))
}
