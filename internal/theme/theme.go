// Package theme provides the Lip Gloss color palette and reusable styles for
// the Debug Agent console. It is a leaf package with no internal imports.
package theme

import "github.com/charmbracelet/lipgloss"

// Console event colors.
var (
	ColorInput      = lipgloss.Color("#60a5fa")
	ColorOutput     = lipgloss.Color("#d1d5db")
	ColorError      = lipgloss.Color("#dc2626")
	ColorSystem     = lipgloss.Color("#9ca3af")
	ColorState      = lipgloss.Color("#7c3aed")
	ColorBreakpoint = lipgloss.Color("#d97706")
	ColorException  = lipgloss.Color("#ef4444")
	ColorTerminated = lipgloss.Color("#4b5563")
)

// Chat role colors.
var (
	ColorUser      = lipgloss.Color("#22c55e")
	ColorAssistant = lipgloss.Color("#3b82f6")
	ColorToolCall  = lipgloss.Color("#d97706")
)

// Tool status colors.
var (
	ColorStarted   = lipgloss.Color("#2563eb")
	ColorCompleted = lipgloss.Color("#16a34a")
	ColorFailed    = lipgloss.Color("#dc2626")
	ColorUnknown   = lipgloss.Color("#854d0e")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Shared styles.
var (
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	StyleDimmed = lipgloss.NewStyle().Foreground(ColorDimmed)
	StyleFocus  = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(ColorBright)
	StyleBlur   = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(ColorBorder)
)

// EventColor returns the color for a console event type.
func EventColor(eventType string) lipgloss.Color {
	switch eventType {
	case "input":
		return ColorInput
	case "error":
		return ColorError
	case "system":
		return ColorSystem
	case "state_change":
		return ColorState
	case "breakpoint_hit":
		return ColorBreakpoint
	case "exception":
		return ColorException
	case "process_terminated":
		return ColorTerminated
	default:
		return ColorOutput
	}
}

// StatusColor returns the color for a tool invocation status string.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "started":
		return ColorStarted
	case "completed":
		return ColorCompleted
	case "failed":
		return ColorFailed
	default:
		return ColorUnknown
	}
}
