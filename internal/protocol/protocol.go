// Package protocol defines the wire types shared by the Debug Agent backend
// and its console clients: the WebSocket message envelope with its three
// event payloads, and the request/response bodies of the REST surface.
package protocol

import "encoding/json"

// MessageType identifies the kind of WebSocket message.
type MessageType string

const (
	// MsgConnected is the server handshake sent right after the upgrade.
	MsgConnected MessageType = "connected"
	// MsgDebuggerEvent carries one low-level debugger console event.
	MsgDebuggerEvent MessageType = "debugger_event"
	// MsgToolCallUpdate carries a tool invocation lifecycle update.
	MsgToolCallUpdate MessageType = "tool_call_update"
)

// Envelope wraps every WebSocket message in both directions.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ConnectedPayload is the handshake body.
type ConnectedPayload struct {
	Message string `json:"message"`
}

// DebuggerEventType classifies console events.
type DebuggerEventType string

const (
	EventInput             DebuggerEventType = "input"
	EventOutput            DebuggerEventType = "output"
	EventError             DebuggerEventType = "error"
	EventSystem            DebuggerEventType = "system"
	EventStateChange       DebuggerEventType = "state_change"
	EventBreakpointHit     DebuggerEventType = "breakpoint_hit"
	EventException         DebuggerEventType = "exception"
	EventProcessTerminated DebuggerEventType = "process_terminated"
)

// DebuggerEvent is one line of debugger console output.
type DebuggerEvent struct {
	Type      DebuggerEventType `json:"type"`
	Timestamp string            `json:"timestamp"`
	Content   string            `json:"content"`
}

// ToolCallType identifies the lifecycle stage of a tool invocation.
type ToolCallType string

const (
	ToolCallStart    ToolCallType = "tool_call_start"
	ToolCallComplete ToolCallType = "tool_call_complete"
	ToolCallError    ToolCallType = "tool_call_error"
)

// ToolResult is the outcome reported by a completed tool.
type ToolResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ToolCall is the inner object of a tool_call_update message.
type ToolCall struct {
	Type       ToolCallType   `json:"type"`
	ToolName   string         `json:"tool_name"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Result     *ToolResult    `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ToolCallUpdatePayload is the body of a tool_call_update message.
type ToolCallUpdatePayload struct {
	ToolCall ToolCall `json:"tool_call"`
}

// --- HTTP request/response types ---

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HistoryMessage is one entry of GET /api/chat/history.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ToolName  string `json:"tool_name,omitempty"`
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponse is returned by GET /api/chat/history.
type HistoryResponse struct {
	Success bool             `json:"success"`
	History []HistoryMessage `json:"history"`
	Error   string           `json:"error,omitempty"`
}

// AckResponse is the generic {success, message|error} acknowledgement.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DebuggerStatus is returned by GET /api/debugger/status.
type DebuggerStatus struct {
	State       string `json:"state"`
	Attached    bool   `json:"attached"`
	TargetPID   int    `json:"target_pid,omitempty"`
	Breakpoints int    `json:"breakpoints"`
	Error       string `json:"error,omitempty"`
}
