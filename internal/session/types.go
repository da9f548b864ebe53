// Package session holds the client-side conversation state: the chat
// transcript, the tool-call correlator that resolves asynchronous lifecycle
// updates onto transcript records, and the append-only console event log.
package session

import (
	"time"

	"github.com/debug-agent/console/internal/protocol"
)

// Role tags a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleToolCall  Role = "tool_call"
	// RoleError marks a locally generated error entry, e.g. a failed
	// request/response call surfaced in the transcript.
	RoleError Role = "error"
)

// ToolStatus is the lifecycle state of a tool invocation.
type ToolStatus string

const (
	StatusStarted   ToolStatus = "started"
	StatusCompleted ToolStatus = "completed"
	StatusFailed    ToolStatus = "failed"
	// StatusUnknown marks an orphan record synthesized for a completion or
	// error that could not be matched to a started invocation.
	StatusUnknown ToolStatus = "unknown"
)

// Terminal reports whether the status admits no further transitions.
func (s ToolStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusUnknown
}

// ToolInvocation is a single logical tool call. It is created on a start
// event and mutated in place by the correlator on a matching complete or
// error; it is never removed from the transcript.
type ToolInvocation struct {
	ID        string
	Name      string
	Arguments map[string]any
	Status    ToolStatus
	Result    map[string]any
	Err       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one transcript entry. Invocation is set only for RoleToolCall;
// the invocation is held by pointer so correlator mutations are visible
// through the message without re-appending it.
type Message struct {
	Role       Role
	Content    string
	Timestamp  time.Time
	Invocation *ToolInvocation
}

// FromHistory converts server-side history entries into transcript messages.
// Tool-call entries arrive flattened (name and status as strings) and are
// rebuilt as settled invocations.
func FromHistory(history []protocol.HistoryMessage) []*Message {
	msgs := make([]*Message, 0, len(history))
	for _, h := range history {
		ts, _ := time.Parse(time.RFC3339, h.Timestamp)
		m := &Message{Content: h.Content, Timestamp: ts}
		switch h.Role {
		case "user":
			m.Role = RoleUser
		case "assistant":
			m.Role = RoleAssistant
		case "tool_call":
			m.Role = RoleToolCall
			m.Invocation = &ToolInvocation{
				Name:      h.ToolName,
				Status:    historyStatus(h.Status),
				CreatedAt: ts,
				UpdatedAt: ts,
			}
		default:
			m.Role = RoleAssistant
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func historyStatus(s string) ToolStatus {
	switch ToolStatus(s) {
	case StatusStarted, StatusCompleted, StatusFailed:
		return ToolStatus(s)
	default:
		return StatusUnknown
	}
}
