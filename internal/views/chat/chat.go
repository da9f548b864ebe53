// Package chat renders the conversation transcript pane: user and assistant
// turns plus live tool-call cards.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/debug-agent/console/internal/session"
	"github.com/debug-agent/console/internal/theme"
)

// Model holds chat pane state.
type Model struct {
	messages []session.Message
	offset   int // scroll offset from the bottom, in rendered lines
	width    int
	renderer *glamour.TermRenderer
}

// New creates an empty chat pane.
func New() Model {
	return Model{}
}

// SetMessages swaps in a transcript snapshot.
func (m *Model) SetMessages(msgs []session.Message) {
	m.messages = msgs
}

// SetWidth resizes the pane and rebuilds the markdown renderer.
func (m *Model) SetWidth(width int) {
	if width == m.width {
		return
	}
	m.width = width
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = r
	}
}

// ScrollUp moves the view toward older messages.
func (m *Model) ScrollUp(n int) {
	m.offset += n
}

// ScrollDown moves the view toward the newest messages.
func (m *Model) ScrollDown(n int) {
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
}

// ScrollToBottom pins the view to the newest message.
func (m *Model) ScrollToBottom() {
	m.offset = 0
}

// View renders the pane at the given size.
func (m *Model) View(width, height int, focused bool) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visible := height - 4
	if visible < 3 {
		visible = 3
	}

	title := theme.StyleHeader.Render(" CHAT ")

	var lines []string
	for _, msg := range m.messages {
		lines = append(lines, m.renderMessage(msg, innerW)...)
	}
	if len(lines) == 0 {
		lines = []string{theme.StyleDimmed.Render("  Ask the agent to attach, break, step or inspect.")}
	}

	if m.offset > len(lines)-visible {
		m.offset = len(lines) - visible
	}
	if m.offset < 0 {
		m.offset = 0
	}
	end := len(lines) - m.offset
	start := end - visible
	if start < 0 {
		start = 0
	}

	body := strings.Join(lines[start:end], "\n")
	content := lipgloss.JoinVertical(lipgloss.Left, title, body)

	style := theme.StyleBlur
	if focused {
		style = theme.StyleFocus
	}
	return style.Width(innerW).Height(height - 2).Padding(0, 1).Render(content)
}

func (m *Model) renderMessage(msg session.Message, width int) []string {
	switch msg.Role {
	case session.RoleUser:
		label := lipgloss.NewStyle().Foreground(theme.ColorUser).Bold(true).Render("you")
		return append([]string{label}, wrap("  "+msg.Content, width)...)
	case session.RoleAssistant:
		label := lipgloss.NewStyle().Foreground(theme.ColorAssistant).Bold(true).Render("agent")
		return append([]string{label}, m.markdown(msg.Content, width)...)
	case session.RoleToolCall:
		return m.renderToolCall(msg.Invocation, width)
	case session.RoleError:
		label := lipgloss.NewStyle().Foreground(theme.ColorDanger).Bold(true).Render("error")
		return append([]string{label}, wrap("  "+msg.Content, width)...)
	default:
		return wrap(msg.Content, width)
	}
}

func (m *Model) renderToolCall(inv *session.ToolInvocation, width int) []string {
	if inv == nil {
		return nil
	}

	glyph := statusGlyph(inv.Status)
	head := fmt.Sprintf("%s %s %s",
		glyph,
		lipgloss.NewStyle().Foreground(theme.ColorToolCall).Render(inv.Name),
		lipgloss.NewStyle().Foreground(theme.StatusColor(string(inv.Status))).Render(string(inv.Status)),
	)

	lines := []string{head}
	if len(inv.Arguments) > 0 {
		lines = append(lines, wrap("  args: "+compactJSON(inv.Arguments), width)...)
	}
	switch inv.Status {
	case session.StatusCompleted:
		if len(inv.Result) > 0 {
			lines = append(lines, wrap("  result: "+compactJSON(inv.Result), width)...)
		}
	case session.StatusFailed, session.StatusUnknown:
		if inv.Err != "" {
			lines = append(lines, wrap("  error: "+inv.Err, width)...)
		}
	}
	return lines
}

// markdown renders assistant content through glamour, falling back to plain
// wrapping when the renderer is unavailable.
func (m *Model) markdown(content string, width int) []string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			return strings.Split(strings.Trim(out, "\n"), "\n")
		}
	}
	return wrap("  "+content, width)
}

func statusGlyph(s session.ToolStatus) string {
	switch s {
	case session.StatusStarted:
		return "⚙"
	case session.StatusCompleted:
		return "✓"
	case session.StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

func compactJSON(v map[string]any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// wrap breaks s into lines of at most width runes, never mid-rune.
func wrap(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}
