// Package status renders the connection and debugger status bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/debug-agent/console/internal/protocol"
	"github.com/debug-agent/console/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected bool
	Debugger  *protocol.DebuggerStatus
	Stale     bool // last status poll failed
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// SetStatus records a poll result. A nil status marks the panel stale and
// keeps the last known values on screen.
func (m *Model) SetStatus(s *protocol.DebuggerStatus) {
	if s == nil {
		m.Stale = true
		return
	}
	m.Debugger = s
	m.Stale = false
}

// View renders the bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Reconnecting...")
	}

	debugStr := theme.StyleDimmed.Render("debugger: unknown")
	if m.Debugger != nil {
		target := "not attached"
		if m.Debugger.Attached {
			target = fmt.Sprintf("pid %d", m.Debugger.TargetPID)
		}
		debugStr = fmt.Sprintf("%s  %s  %d bp",
			lipgloss.NewStyle().Foreground(theme.ColorBright).Render(m.Debugger.State),
			target,
			m.Debugger.Breakpoints,
		)
	}
	if m.Stale {
		debugStr += theme.StyleDimmed.Render(" (stale)")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + debugStr

	return lipgloss.NewStyle().
		Width(width - 2).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
