package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/selection"
)

// pagePoint maps a terminal cell to viewport space. The point sits at the
// cell centre so a drag along one row still crosses the links on it.
func pagePoint(x, y int) geometry.Point {
	return geometry.Point{X: float64(x) + 0.5, Y: float64(y-1) + 0.5}
}

// handleMouseMsg routes mouse input to the focused tab's controller. A right
// click outside a selection opens the context menu.
func (m *Model) handleMouseMsg(msg tea.MouseMsg) {
	if m.overlay != overlayNone {
		if msg.Action == tea.MouseActionPress {
			m.overlay = overlayNone
		}
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll(-wheelStep)
		return
	case tea.MouseButtonWheelDown:
		m.scroll(wheelStep)
		return
	}

	c := m.activeController()
	pt := pagePoint(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonRight && (c == nil || !c.Active()) {
			m.openMenu()
			return
		}
		if msg.Y < 1 || c == nil {
			return
		}
		button := mouseButton(msg.Button)
		var buttons uint
		if button == selection.ButtonPrimary {
			m.leftDown = true
			buttons = selection.PrimaryMask
		}
		c.MouseDown(selection.MouseEvent{Point: pt, Button: button, Buttons: buttons})
	case tea.MouseActionMotion:
		if c == nil {
			return
		}
		var buttons uint
		if msg.Button == tea.MouseButtonLeft {
			buttons = selection.PrimaryMask
		}
		c.MouseMove(selection.MouseEvent{Point: pt, Buttons: buttons})
	case tea.MouseActionRelease:
		wasDown := m.leftDown
		m.leftDown = false
		if c == nil || !wasDown {
			return
		}
		c.MouseUp(selection.MouseEvent{Point: pt, Button: selection.ButtonPrimary})
	}
}

func mouseButton(b tea.MouseButton) selection.Button {
	switch b {
	case tea.MouseButtonMiddle:
		return selection.ButtonMiddle
	case tea.MouseButtonRight:
		return selection.ButtonSecondary
	default:
		return selection.ButtonPrimary
	}
}
