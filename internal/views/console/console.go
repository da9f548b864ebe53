// Package console renders the scrollable debugger event log pane.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/debug-agent/console/internal/protocol"
	"github.com/debug-agent/console/internal/theme"
)

// Model holds console pane state.
type Model struct {
	events []protocol.DebuggerEvent
	offset int // scroll offset from the bottom
}

// New creates an empty console pane.
func New() Model {
	return Model{}
}

// SetEvents swaps in a fresh snapshot. Scroll position is kept unless the
// pane was already at the bottom, which stays pinned to new events.
func (m *Model) SetEvents(events []protocol.DebuggerEvent) {
	m.events = events
	if m.offset > len(m.events) {
		m.offset = len(m.events)
	}
}

// ScrollUp moves the view toward older events.
func (m *Model) ScrollUp(n int) {
	m.offset += n
	max := len(m.events) - 1
	if max < 0 {
		max = 0
	}
	if m.offset > max {
		m.offset = max
	}
}

// ScrollDown moves the view toward the newest events.
func (m *Model) ScrollDown(n int) {
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the pane at the given size.
func (m Model) View(width, height int, focused bool) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visible := height - 4
	if visible < 3 {
		visible = 3
	}

	title := theme.StyleHeader.Render(" DEBUGGER CONSOLE ")
	counter := theme.StyleDimmed.Render(fmt.Sprintf("%d events", len(m.events)))

	var body string
	if len(m.events) == 0 {
		body = theme.StyleDimmed.Render("  No debugger output yet.")
	} else {
		end := len(m.events) - m.offset
		start := end - visible
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}

		var lines []string
		for i := start; i < end; i++ {
			lines = append(lines, renderEvent(m.events[i], innerW))
		}
		body = strings.Join(lines, "\n")
	}

	scroll := ""
	if m.offset > 0 {
		scroll = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d newer", m.offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title+" "+counter, body, scroll)
	style := theme.StyleBlur
	if focused {
		style = theme.StyleFocus
	}
	return style.Width(innerW).Height(height - 2).Padding(0, 1).Render(content)
}

func renderEvent(ev protocol.DebuggerEvent, width int) string {
	ts := theme.StyleDimmed.Render(shortTimestamp(ev.Timestamp))
	kind := lipgloss.NewStyle().
		Foreground(theme.EventColor(string(ev.Type))).
		Width(12).
		Render(string(ev.Type))

	msg := ev.Content
	if avail := width - 22; avail > 3 {
		if runes := []rune(msg); len(runes) > avail {
			msg = string(runes[:avail-3]) + "..."
		}
	}
	return fmt.Sprintf("%s %s %s", ts, kind, msg)
}

// shortTimestamp trims an RFC3339 timestamp down to the clock part.
func shortTimestamp(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) > i+9 {
		return ts[i+1 : i+9]
	}
	if len(ts) > 8 {
		return ts[:8]
	}
	return ts
}
