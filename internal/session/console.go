package session

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/debug-agent/console/internal/protocol"
)

// DefaultConsoleCap matches the backend's retention of the last 1000 events.
const DefaultConsoleCap = 1000

// ConsoleLog is the append-only ordered log of debugger execution events.
// Arrival order, not the event timestamp, governs display order.
type ConsoleLog struct {
	mu     sync.Mutex
	cap    int
	events []protocol.DebuggerEvent
}

// NewConsoleLog creates a log keeping at most capacity events; zero or
// negative means DefaultConsoleCap.
func NewConsoleLog(capacity int) *ConsoleLog {
	if capacity <= 0 {
		capacity = DefaultConsoleCap
	}
	return &ConsoleLog{cap: capacity}
}

// Append adds one event, evicting the oldest past the cap.
func (l *ConsoleLog) Append(ev protocol.DebuggerEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	if len(l.events) > l.cap {
		l.events = l.events[len(l.events)-l.cap:]
	}
	l.mu.Unlock()
}

// HandleRaw decodes a debugger_event payload and appends it. A payload that
// cannot be decoded, or that is missing its fields, still produces a
// best-effort system entry so the stream visibly continues.
func (l *ConsoleLog) HandleRaw(payload json.RawMessage) {
	var ev protocol.DebuggerEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("console: malformed debugger event: %v", err)
		l.Append(protocol.DebuggerEvent{
			Type:    protocol.EventSystem,
			Content: "unreadable event: " + compact(payload),
		})
		return
	}
	if ev.Type == "" {
		ev.Type = protocol.EventSystem
	}
	if ev.Content == "" {
		ev.Content = compact(payload)
	}
	l.Append(ev)
}

// Replace swaps the stored events, used when hydrating from the server.
func (l *ConsoleLog) Replace(events []protocol.DebuggerEvent) {
	l.mu.Lock()
	l.events = append([]protocol.DebuggerEvent(nil), events...)
	if len(l.events) > l.cap {
		l.events = l.events[len(l.events)-l.cap:]
	}
	l.mu.Unlock()
}

// Clear empties the log. Clearing an empty log is a no-op.
func (l *ConsoleLog) Clear() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

// Len returns the number of stored events.
func (l *ConsoleLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Events returns a snapshot in arrival order.
func (l *ConsoleLog) Events() []protocol.DebuggerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]protocol.DebuggerEvent(nil), l.events...)
}
