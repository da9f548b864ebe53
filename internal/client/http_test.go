package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/debug-agent/console/internal/protocol"
)

func apiServer(t *testing.T, handlers map[string]http.HandlerFunc) *API {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range handlers {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewAPI(srv.URL)
}

func TestSendChat(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/chat": func(w http.ResponseWriter, r *http.Request) {
			var req protocol.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Message != "inspect locals" {
				t.Errorf("unexpected message: %q", req.Message)
			}
			json.NewEncoder(w).Encode(protocol.ChatResponse{Success: true, Response: "locals: count=0"})
		},
	})

	resp, err := api.SendChat("inspect locals")
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if resp.Response != "locals: count=0" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSendChat_Rejected(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/chat": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(protocol.ChatResponse{Success: false, Error: "model unavailable"})
		},
	})

	if _, err := api.SendChat("hi"); err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestSendChat_HTTPError(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/chat": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})

	if _, err := api.SendChat("hi"); err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestChatHistory(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/chat/history": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(protocol.HistoryResponse{
				Success: true,
				History: []protocol.HistoryMessage{
					{Role: "user", Content: "hello", Timestamp: "t1"},
					{Role: "tool_call", ToolName: "set_breakpoint", Status: "completed", Timestamp: "t2"},
				},
			})
		},
	})

	history, err := api.ChatHistory()
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != 2 || history[1].ToolName != "set_breakpoint" {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestStatus(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/debugger/status": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(protocol.DebuggerStatus{State: "Running", Attached: true, TargetPID: 99})
		},
	})

	s, err := api.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if s.State != "Running" || s.TargetPID != 99 {
		t.Errorf("unexpected status: %+v", s)
	}
}

func TestStatus_BackendError(t *testing.T) {
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/debugger/status": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(protocol.DebuggerStatus{Error: "debugger not initialized"})
		},
	})

	if _, err := api.Status(); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestConsoleEventsAndClears(t *testing.T) {
	var clearedConsole, clearedChat bool
	api := apiServer(t, map[string]http.HandlerFunc{
		"/api/console/events": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]protocol.DebuggerEvent{
				{Type: protocol.EventOutput, Timestamp: "t", Content: "line"},
			})
		},
		"/api/console/clear": func(w http.ResponseWriter, r *http.Request) {
			clearedConsole = true
			json.NewEncoder(w).Encode(protocol.AckResponse{Success: true})
		},
		"/api/chat/clear": func(w http.ResponseWriter, r *http.Request) {
			clearedChat = true
			json.NewEncoder(w).Encode(protocol.AckResponse{Success: true})
		},
	})

	events, err := api.ConsoleEvents()
	if err != nil {
		t.Fatalf("ConsoleEvents: %v", err)
	}
	if len(events) != 1 || events[0].Content != "line" {
		t.Errorf("unexpected events: %+v", events)
	}

	if err := api.ClearConsole(); err != nil || !clearedConsole {
		t.Errorf("ClearConsole: err=%v hit=%v", err, clearedConsole)
	}
	if err := api.ClearChat(); err != nil || !clearedChat {
		t.Errorf("ClearChat: err=%v hit=%v", err, clearedChat)
	}
}
