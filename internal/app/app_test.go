package app

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/debug-agent/console/internal/bus"
	"github.com/debug-agent/console/internal/client"
	"github.com/debug-agent/console/internal/config"
	"github.com/debug-agent/console/internal/session"
)

func newTestModel() (Model, *bus.Bus) {
	b := bus.New()
	m := New(nil, client.NewAPI("http://127.0.0.1:1"), b, config.Default())
	return m, b
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestBusEventReachesSessionStateBeforeWakeup(t *testing.T) {
	m, b := newTestModel()

	b.Emit(client.BusEventToolCall, jsonRaw(`{"tool_call":{"type":"tool_call_start","tool_name":"step","tool_call_id":"a"}}`))

	// The data handler ran synchronously during Emit.
	if m.transcript.Len() != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", m.transcript.Len())
	}

	// The forwarder queued a wake-up for the Bubble Tea loop.
	select {
	case name := <-m.events:
		if name != client.BusEventToolCall {
			t.Errorf("expected tool_call_update wake-up, got %s", name)
		}
	default:
		t.Error("no wake-up queued")
	}
}

func TestDebuggerEventAppendsToConsole(t *testing.T) {
	m, b := newTestModel()

	b.Emit(client.BusEventDebugger, jsonRaw(`{"type":"output","timestamp":"t","content":"stdout line"}`))

	if m.consoleLog.Len() != 1 {
		t.Fatalf("expected 1 console event, got %d", m.consoleLog.Len())
	}
}

func TestConnectionStateFollowsBusMessages(t *testing.T) {
	m, _ := newTestModel()

	m = update(t, m, busMsg(client.BusEventConnected))
	if !m.statusBar.Connected {
		t.Error("status bar should show connected")
	}

	m = update(t, m, busMsg(client.BusEventDisconnected))
	if m.statusBar.Connected {
		t.Error("status bar should show disconnected")
	}
	if m.hydrated {
		t.Error("disconnect must reset hydration so a reconnect re-fetches state")
	}
}

func TestChatFailureBecomesTranscriptEntry(t *testing.T) {
	m, _ := newTestModel()

	m = update(t, m, chatDoneMsg{err: errors.New("connection refused")})

	msgs := m.transcript.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(msgs))
	}
	if msgs[0].Role != session.RoleError {
		t.Errorf("expected error entry, got %s", msgs[0].Role)
	}
}

func TestSendKeyAppendsUserMessage(t *testing.T) {
	m, _ := newTestModel()
	m.input.SetValue("attach to demo")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("send should issue a request command")
	}
	if !m.sending {
		t.Error("model should be marked sending")
	}
	msgs := m.transcript.Messages()
	if len(msgs) != 1 || msgs[0].Role != session.RoleUser {
		t.Fatalf("expected a user message, got %+v", msgs)
	}
	if m.input.Value() != "" {
		t.Error("input should reset after send")
	}
}

func TestEmptySendIsIgnored(t *testing.T) {
	m, _ := newTestModel()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if cmd != nil {
		t.Error("empty input should not send")
	}
	if m.transcript.Len() != 0 {
		t.Error("empty input should not append")
	}
}

func TestClearedConsoleEmptiesLog(t *testing.T) {
	m, b := newTestModel()
	b.Emit(client.BusEventDebugger, jsonRaw(`{"type":"output","content":"x"}`))

	m = update(t, m, clearedMsg{what: "console"})

	if m.consoleLog.Len() != 0 {
		t.Errorf("expected cleared console, got %d events", m.consoleLog.Len())
	}
}

func TestViewShowsReconnectingWhenDisconnected(t *testing.T) {
	m, _ := newTestModel()
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	v := m.View()
	if !strings.Contains(v, "Reconnecting") {
		t.Error("disconnected view should mention reconnecting")
	}
}

func jsonRaw(s string) any {
	return json.RawMessage(s)
}
