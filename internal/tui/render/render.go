// Package render draws the browser chrome: tab bar, footer, menus and
// popups. The page itself is drawn by Page.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/errors"
)

const (
	maxTabTitle     = 18
	loadingSymbol   = "…"
	selectingSymbol = "◆"
	menuPointer     = "›"
)

// TabItem defines the inputs needed to render one tab label.
type TabItem struct {
	Title     string
	URL       string
	Active    bool
	Loading   bool
	Selecting bool
}

// TabBarState defines the inputs needed to render the tab bar.
type TabBarState struct {
	Tabs        []TabItem
	Window      int
	WindowCount int
	Width       int
}

// FooterState defines the inputs needed to render the footer line.
type FooterState struct {
	Status    errors.Message
	HasStatus bool
	Prompt    string
	Help      string
	Mode      string
	Width     int
}

// MenuState defines the inputs needed to render a menu box.
type MenuState struct {
	Title  string
	Items  []string
	Cursor int
	Empty  string
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Background(lipgloss.Color(ansiColorNumber(colors.Blue))).
			Foreground(lipgloss.Color("15"))
	windowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ansiColorNumber(colors.Cyan))).
			Padding(0, 1)
	menuTitleStyle    = lipgloss.NewStyle().Bold(true)
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan)))
)

var statusStyles = map[errors.MessageType]lipgloss.Style{
	errors.MessageTypeError:   lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red))),
	errors.MessageTypeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow))),
	errors.MessageTypeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Blue))),
	errors.MessageTypeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Green))),
}

// TabBar renders one line of tab labels, cut to the width.
func TabBar(state TabBarState) string {
	var b strings.Builder
	for i, tab := range state.Tabs {
		title := tab.Title
		if title == "" {
			title = tab.URL
		}
		if title == "" {
			title = "New tab"
		}
		label := fmt.Sprintf("%d:%s", i+1, truncate(title, maxTabTitle))
		if tab.Loading {
			label += loadingSymbol
		}
		if tab.Selecting {
			label = selectingSymbol + " " + label
		}
		if tab.Active {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	if state.WindowCount > 1 {
		b.WriteString(windowStyle.Render(fmt.Sprintf(" [win %d/%d]", state.Window+1, state.WindowCount)))
	}
	return cut(b.String(), state.Width)
}

// Footer renders the status line: the prompt when one is open, otherwise
// the current status message, otherwise the help text.
func Footer(state FooterState) string {
	var line string
	switch {
	case state.Prompt != "":
		line = state.Prompt
	case state.HasStatus:
		style := statusStyles[state.Status.Type]
		line = style.Render(fmt.Sprintf("%s: %s", state.Status.Type, state.Status.Text))
	default:
		line = helpStyle.Render(state.Help)
	}
	if state.Mode != "" {
		line = modeStyle.Render(state.Mode) + " " + line
	}
	return cut(line, state.Width)
}

// Menu renders a bordered list with the cursor row marked.
func Menu(state MenuState) string {
	var rows []string
	if state.Title != "" {
		rows = append(rows, menuTitleStyle.Render(state.Title))
	}
	if len(state.Items) == 0 && state.Empty != "" {
		rows = append(rows, helpStyle.Render(state.Empty))
	}
	for i, item := range state.Items {
		if i == state.Cursor {
			rows = append(rows, menuSelectedStyle.Render(menuPointer+" "+item))
			continue
		}
		rows = append(rows, "  "+item)
	}
	return menuStyle.Render(strings.Join(rows, "\n"))
}

// Overlay draws box over base starting at row and column. Lines of base
// under the box are replaced from the column on.
func Overlay(base, box string, row, col int) string {
	lines := strings.Split(base, "\n")
	for i, boxLine := range strings.Split(box, "\n") {
		at := row + i
		if at < 0 || at >= len(lines) {
			continue
		}
		left := ""
		if col > 0 {
			left = cut(lines[at], col)
		}
		if pad := col - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		lines[at] = left + boxLine
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// cut limits s to width cells. A non-positive width leaves s unchanged.
func cut(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	i := strings.LastIndex(ansi, ";")
	if i == -1 {
		return ""
	}
	return ansi[i+1 : len(ansi)-1]
}
