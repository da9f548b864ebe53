package sim

import (
	"strings"
	"testing"

	"github.com/debug-agent/console/internal/protocol"
)

type capturedMsg struct {
	typ     protocol.MessageType
	payload any
}

type fakePublisher struct {
	msgs []capturedMsg
}

func (f *fakePublisher) Publish(typ protocol.MessageType, payload any) {
	f.msgs = append(f.msgs, capturedMsg{typ: typ, payload: payload})
}

func (f *fakePublisher) toolCalls(t *testing.T) []protocol.ToolCall {
	t.Helper()
	var out []protocol.ToolCall
	for _, m := range f.msgs {
		if m.typ != protocol.MsgToolCallUpdate {
			continue
		}
		p, ok := m.payload.(protocol.ToolCallUpdatePayload)
		if !ok {
			t.Fatalf("tool_call_update with payload %T", m.payload)
		}
		out = append(out, p.ToolCall)
	}
	return out
}

func TestChatRecordsHistoryAndRunsTool(t *testing.T) {
	pub := &fakePublisher{}
	a := New(pub)

	resp, err := a.Chat("set a breakpoint please")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(resp, "breakpoint") {
		t.Errorf("unexpected response: %q", resp)
	}

	history := a.History()
	if len(history) != 3 {
		t.Fatalf("expected user + tool_call + assistant in history, got %d entries", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "tool_call" || history[2].Role != "assistant" {
		t.Errorf("unexpected history roles: %+v", history)
	}
	if history[1].ToolName != "set_breakpoint" || history[1].Status != "completed" {
		t.Errorf("unexpected tool entry: %+v", history[1])
	}

	calls := pub.toolCalls(t)
	if len(calls) != 2 {
		t.Fatalf("expected start + complete, got %d tool calls", len(calls))
	}
	if calls[0].Type != protocol.ToolCallStart || calls[1].Type != protocol.ToolCallComplete {
		t.Fatalf("unexpected lifecycle: %v then %v", calls[0].Type, calls[1].Type)
	}
	if calls[0].ToolCallID == "" || calls[0].ToolCallID != calls[1].ToolCallID {
		t.Errorf("complete must carry the start's id: %q vs %q", calls[0].ToolCallID, calls[1].ToolCallID)
	}
	if calls[1].Result == nil || !calls[1].Result.Success {
		t.Errorf("expected successful result, got %+v", calls[1].Result)
	}
}

func TestChatToolCallIDsAreUnique(t *testing.T) {
	pub := &fakePublisher{}
	a := New(pub)

	a.Chat("what is the status?")
	a.Chat("set a breakpoint")

	calls := pub.toolCalls(t)
	if len(calls) != 4 {
		t.Fatalf("expected 4 tool call messages, got %d", len(calls))
	}
	if calls[0].ToolCallID == calls[2].ToolCallID {
		t.Errorf("ids must differ across invocations: %q", calls[0].ToolCallID)
	}
}

func TestSetBreakpointUpdatesStatus(t *testing.T) {
	a := New(&fakePublisher{})

	if got := a.Status().Breakpoints; got != 0 {
		t.Fatalf("expected 0 breakpoints initially, got %d", got)
	}
	a.Chat("add a breakpoint at the failing line")
	if got := a.Status().Breakpoints; got != 1 {
		t.Errorf("expected 1 breakpoint after chat, got %d", got)
	}
}

func TestScriptWalksStates(t *testing.T) {
	pub := &fakePublisher{}
	a := New(pub)

	steps := len(script())
	wantStates := []DebuggerState{
		StateIdle, StateRunning, StateRunning, StatePaused,
		StatePaused, StatePaused, StateCrashed, StateTerminated,
	}
	if len(wantStates) != steps {
		t.Fatalf("state table out of sync with script: %d vs %d", len(wantStates), steps)
	}

	for i, want := range wantStates {
		a.Advance()
		st := a.Status()
		if st.State != want.Title() {
			t.Errorf("step %d: state %q, want %q", i, st.State, want.Title())
		}
	}

	// After attach the simulator points at a real pid.
	if a.Status().TargetPID == 0 {
		t.Error("expected a target pid after a full script run")
	}

	// The script wraps around.
	a.Advance()
	if got := a.Status().State; got != StateIdle.Title() {
		t.Errorf("expected script to restart at idle, got %q", got)
	}
}

func TestScriptEmitsConsoleEvents(t *testing.T) {
	a := New(&fakePublisher{})

	for i := 0; i < len(script()); i++ {
		a.Advance()
	}

	events := a.ConsoleEvents()
	if len(events) == 0 {
		t.Fatal("expected console events after a script run")
	}

	seen := make(map[protocol.DebuggerEventType]bool)
	for _, ev := range events {
		seen[ev.Type] = true
		if ev.Timestamp == "" {
			t.Errorf("event %q missing timestamp", ev.Content)
		}
	}
	for _, typ := range []protocol.DebuggerEventType{
		protocol.EventSystem, protocol.EventStateChange, protocol.EventInput,
		protocol.EventOutput, protocol.EventBreakpointHit, protocol.EventException,
		protocol.EventProcessTerminated,
	} {
		if !seen[typ] {
			t.Errorf("script never emitted %q", typ)
		}
	}
}

func TestConsoleCapBoundsGrowth(t *testing.T) {
	a := New(&fakePublisher{})

	a.mu.Lock()
	for i := 0; i < maxConsoleEvents+50; i++ {
		a.emitLocked(protocol.EventOutput, "line")
	}
	a.mu.Unlock()

	if got := len(a.ConsoleEvents()); got != maxConsoleEvents {
		t.Errorf("expected console capped at %d, got %d", maxConsoleEvents, got)
	}
}

func TestClearOperations(t *testing.T) {
	a := New(&fakePublisher{})

	a.Chat("hello")
	a.Advance()

	a.ClearChat()
	a.ClearConsole()

	if got := len(a.History()); got != 0 {
		t.Errorf("expected empty history, got %d", got)
	}
	if got := len(a.ConsoleEvents()); got != 0 {
		t.Errorf("expected empty console, got %d", got)
	}

	// Clearing twice is a no-op.
	a.ClearChat()
	a.ClearConsole()
}

func TestStateTitle(t *testing.T) {
	if got := StatePaused.Title(); got != "Paused" {
		t.Errorf("Title() = %q, want Paused", got)
	}
	if got := DebuggerState("").Title(); got != "" {
		t.Errorf("empty state Title() = %q", got)
	}
}
