package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/settings"
)

// PageState defines the inputs needed to render the visible part of a page.
type PageState struct {
	Doc     *page.Document
	Scroll  int
	Width   int
	Height  int
	Markers map[int]classify.Status
	// Highlight is the highlight style of the running selection.
	Highlight string
	// Box is the selection rectangle in document space, drawn when ShowBox.
	Box      geometry.Rect
	BoxStyle ports.BoxStyle
	ShowBox  bool
}

type cellKind int

const (
	cellText cellKind = iota
	cellLink
	cellBorder
	cellBorderOverText
)

type cell struct {
	text string
	kind cellKind
	link int
	// wide marks the trailing column of a double-width character.
	wide bool
}

type borderRunes struct {
	h, v, tl, tr, bl, br string
}

var borders = map[string]borderRunes{
	settings.BoxStyleSolid:  {h: "─", v: "│", tl: "┌", tr: "┐", bl: "└", br: "┘"},
	settings.BoxStyleDashed: {h: "╌", v: "╎", tl: "┌", tr: "┐", bl: "└", br: "┘"},
	settings.BoxStyleDotted: {h: "┈", v: "┊", tl: "·", tr: "·", bl: "·", br: "·"},
	settings.BoxStyleSubtle: {h: "·", v: "·", tl: "·", tr: "·", bl: "·", br: "·"},
}

var (
	linkStyle          = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))
	duplicateStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	excludedStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#c90062"))
	limitExceededStyle = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("244"))
)

// HighlightStyle returns the style a highlighted link is drawn with.
func HighlightStyle(name string) lipgloss.Style {
	switch name {
	case settings.HighlightUnderline:
		return lipgloss.NewStyle().Underline(true).Bold(true).Foreground(lipgloss.Color("#007bff"))
	case settings.HighlightOutline:
		return lipgloss.NewStyle().Bold(true).Italic(true).Foreground(lipgloss.Color("#ff9800"))
	case settings.HighlightInverse:
		return lipgloss.NewStyle().Reverse(true)
	default:
		return lipgloss.NewStyle().Background(lipgloss.Color("#ffeb3b")).Foreground(lipgloss.Color("#000000"))
	}
}

// StatusStyle returns the style of a link classified with status.
func StatusStyle(status classify.Status, highlight string) lipgloss.Style {
	switch status {
	case classify.StatusHighlighted:
		return HighlightStyle(highlight)
	case classify.StatusDuplicate:
		return duplicateStyle
	case classify.StatusExcluded:
		return excludedStyle
	case classify.StatusLimitExceeded:
		return limitExceededStyle
	default:
		return linkStyle
	}
}

func boxStyle(style ports.BoxStyle) lipgloss.Style {
	s := lipgloss.NewStyle()
	if style.Color != "" {
		s = s.Foreground(lipgloss.Color(style.Color))
	}
	if style.Border == settings.BoxStyleSubtle {
		s = s.Faint(true)
	}
	return s
}

// Page renders Height rows of the document starting at Scroll. Links are
// styled by their marker and the selection box is drawn over the text.
func Page(state PageState) string {
	if state.Height <= 0 {
		return ""
	}
	grid := make([][]cell, state.Height)
	for row := range grid {
		grid[row] = make([]cell, state.Width)
		for col := range grid[row] {
			grid[row][col] = cell{text: " ", link: -1}
		}
		if state.Doc == nil {
			continue
		}
		line := state.Scroll + row
		if line >= 0 && line < len(state.Doc.Lines) {
			fillLine(grid[row], state.Doc.Lines[line])
		}
	}

	if state.Doc != nil {
		for _, link := range state.Doc.Links {
			for _, span := range link.Spans {
				row := span.Line - state.Scroll
				if row < 0 || row >= state.Height {
					continue
				}
				for col := span.Start; col < span.End && col < state.Width; col++ {
					if col >= 0 {
						grid[row][col].kind = cellLink
						grid[row][col].link = link.ID
					}
				}
			}
		}
	}

	if state.ShowBox {
		drawBox(grid, state.Box.Translate(geometry.Point{Y: -float64(state.Scroll)}), state.BoxStyle.Border)
	}

	box := boxStyle(state.BoxStyle)
	rows := make([]string, len(grid))
	for i, row := range grid {
		rows[i] = renderRow(row, state, box)
	}
	return strings.Join(rows, "\n")
}

func fillLine(row []cell, text string) {
	col := 0
	for _, r := range text {
		if col >= len(row) {
			return
		}
		s := string(r)
		w := lipgloss.Width(s)
		if w == 0 {
			row[col-min(col, 1)].text += s
			continue
		}
		row[col].text = s
		if w == 2 && col+1 < len(row) {
			row[col+1] = cell{text: "", link: -1, wide: true}
		}
		col += w
	}
}

func drawBox(grid [][]cell, r geometry.Rect, border string) {
	runes, ok := borders[border]
	if !ok {
		runes = borders[settings.BoxStyleSolid]
	}
	left := int(math.Floor(r.Left))
	right := int(math.Floor(r.Right))
	top := int(math.Floor(r.Top))
	bottom := int(math.Floor(r.Bottom))

	put := func(row, col int, s string) {
		if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
			return
		}
		c := &grid[row][col]
		if c.wide {
			return
		}
		if strings.TrimSpace(c.text) == "" {
			c.text = s
			c.kind = cellBorder
			return
		}
		c.kind = cellBorderOverText
	}

	for col := left + 1; col < right; col++ {
		put(top, col, runes.h)
		put(bottom, col, runes.h)
	}
	for row := top + 1; row < bottom; row++ {
		put(row, left, runes.v)
		put(row, right, runes.v)
	}
	if top == bottom {
		for col := left; col <= right; col++ {
			put(top, col, runes.h)
		}
		return
	}
	put(top, left, runes.tl)
	put(top, right, runes.tr)
	put(bottom, left, runes.bl)
	put(bottom, right, runes.br)
}

type styleKey struct {
	kind cellKind
	link int
}

func renderRow(row []cell, state PageState, box lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	cur := styleKey{kind: cellText, link: -1}

	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(styleFor(cur, state, box).Render(run.String()))
		run.Reset()
	}
	for _, c := range row {
		if c.wide {
			continue
		}
		key := styleKey{kind: c.kind, link: c.link}
		if key.kind == cellText || key.kind == cellBorder {
			key.link = -1
		}
		if key != cur {
			flush()
			cur = key
		}
		run.WriteString(c.text)
	}
	flush()
	return b.String()
}

func styleFor(key styleKey, state PageState, box lipgloss.Style) lipgloss.Style {
	switch key.kind {
	case cellLink:
		return StatusStyle(state.Markers[key.link], state.Highlight)
	case cellBorder:
		return box
	case cellBorderOverText:
		if state.BoxStyle.Color != "" {
			return lipgloss.NewStyle().Background(lipgloss.Color(state.BoxStyle.Color))
		}
		return lipgloss.NewStyle().Reverse(true)
	default:
		return lipgloss.NewStyle()
	}
}
