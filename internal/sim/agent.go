// Package sim implements a scripted debug-agent backend. It walks a canned
// debugging session (attach, breakpoints, a crash) and answers chat messages
// with simulated tool invocations, so the console client can be exercised
// without a live debugger.
package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/debug-agent/console/internal/protocol"
)

// Publisher is the outbound side of the simulator; the WebSocket hub
// implements it.
type Publisher interface {
	Publish(typ protocol.MessageType, payload any)
}

// DebuggerState mirrors the states a real debugger backend moves through.
type DebuggerState string

const (
	StateIdle       DebuggerState = "idle"
	StateRunning    DebuggerState = "running"
	StatePaused     DebuggerState = "paused"
	StateCrashed    DebuggerState = "crashed"
	StateTerminated DebuggerState = "terminated"
)

// Title renders the state the way the status endpoint reports it.
func (s DebuggerState) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

const maxConsoleEvents = 1000

// Agent is the scripted backend. All mutation happens under mu; the script
// loop, chat handler and HTTP handlers all funnel through it.
type Agent struct {
	pub Publisher

	mu          sync.Mutex
	state       DebuggerState
	attached    bool
	targetPID   int
	targetName  string
	breakpoints int
	console     []protocol.DebuggerEvent
	history     []protocol.HistoryMessage
	nextCallID  int
	scriptPos   int
}

func New(pub Publisher) *Agent {
	return &Agent{
		pub:   pub,
		state: StateIdle,
	}
}

// emitLocked records a console event and broadcasts it. Callers hold mu.
func (a *Agent) emitLocked(typ protocol.DebuggerEventType, content string) {
	ev := protocol.DebuggerEvent{
		Type:      typ,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Content:   content,
	}
	a.console = append(a.console, ev)
	if len(a.console) > maxConsoleEvents {
		a.console = a.console[len(a.console)-maxConsoleEvents:]
	}
	a.pub.Publish(protocol.MsgDebuggerEvent, ev)
}

func (a *Agent) publishToolCallLocked(tc protocol.ToolCall) {
	a.pub.Publish(protocol.MsgToolCallUpdate, protocol.ToolCallUpdatePayload{ToolCall: tc})
}

func (a *Agent) nextCallIDLocked() string {
	a.nextCallID++
	return fmt.Sprintf("call_%d", a.nextCallID)
}

// Status implements the /api/debugger/status surface.
func (a *Agent) Status() protocol.DebuggerStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return protocol.DebuggerStatus{
		State:       a.state.Title(),
		Attached:    a.attached,
		TargetPID:   a.targetPID,
		Breakpoints: a.breakpoints,
	}
}

func (a *Agent) ConsoleEvents() []protocol.DebuggerEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]protocol.DebuggerEvent, len(a.console))
	copy(out, a.console)
	return out
}

func (a *Agent) ClearConsole() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.console = nil
}

func (a *Agent) History() []protocol.HistoryMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]protocol.HistoryMessage, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) ClearChat() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

func (a *Agent) appendHistoryLocked(role, content string) {
	a.history = append(a.history, protocol.HistoryMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}

// Chat answers a user message with a canned response, running one simulated
// tool invocation along the way so tool_call_update traffic flows end to end.
func (a *Agent) Chat(message string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.appendHistoryLocked("user", message)

	tool, args, response := a.planReplyLocked(message)
	a.runToolLocked(tool, args)

	a.appendHistoryLocked("assistant", response)
	return response, nil
}

// planReplyLocked picks a tool and a reply from keywords in the message.
func (a *Agent) planReplyLocked(message string) (tool string, args map[string]any, response string) {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "breakpoint"):
		return "set_breakpoint",
			map[string]any{"file": "main.py", "line": 42},
			"I set a breakpoint at main.py:42. The process will pause the next time that line executes."
	case strings.Contains(lower, "status") || strings.Contains(lower, "state"):
		return "get_debugger_status",
			nil,
			fmt.Sprintf("The debugger is %s with %d breakpoint(s) set.", strings.ToLower(a.state.Title()), a.breakpoints)
	case strings.Contains(lower, "crash") || strings.Contains(lower, "exception") || strings.Contains(lower, "why"):
		return "get_stack_trace",
			nil,
			"The process raised ZeroDivisionError in compute() at main.py:42. The divisor came from user input and was never validated."
	case strings.Contains(lower, "continue") || strings.Contains(lower, "resume"):
		return "continue_execution",
			nil,
			"Resumed execution. I'll report back when the next breakpoint is hit."
	default:
		return "list_breakpoints",
			nil,
			"I can attach to a process, manage breakpoints, step through code and inspect state. What would you like to do?"
	}
}

// runToolLocked plays a complete start/complete invocation through the hub
// and records it in the chat history.
func (a *Agent) runToolLocked(tool string, args map[string]any) {
	id := a.nextCallIDLocked()

	a.publishToolCallLocked(protocol.ToolCall{
		Type:       protocol.ToolCallStart,
		ToolName:   tool,
		ToolCallID: id,
		Arguments:  args,
	})

	result := &protocol.ToolResult{
		Success: true,
		Data:    map[string]any{"state": string(a.state)},
	}
	if tool == "set_breakpoint" {
		a.breakpoints++
		result.Data["breakpoints"] = a.breakpoints
	}

	a.publishToolCallLocked(protocol.ToolCall{
		Type:       protocol.ToolCallComplete,
		ToolName:   tool,
		ToolCallID: id,
		Result:     result,
	})

	a.history = append(a.history, protocol.HistoryMessage{
		Role:      "tool_call",
		Content:   tool,
		ToolName:  tool,
		Status:    "completed",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}
