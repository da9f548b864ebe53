package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/debug-agent/console/internal/protocol"
	"github.com/gorilla/websocket"
)

// Agent is the debug-agent backend the HTTP surface exposes. The simulator
// implements it; a real debugger backend would slot in the same way.
type Agent interface {
	Chat(message string) (string, error)
	History() []protocol.HistoryMessage
	ClearChat()
	Status() protocol.DebuggerStatus
	ConsoleEvents() []protocol.DebuggerEvent
	ClearConsole()
}

// Server serves the WebSocket upgrade endpoint and the REST API the console
// client talks to.
type Server struct {
	hub   *Hub
	agent Agent
}

func NewServer(hub *Hub, agent Agent) *Server {
	return &Server{hub: hub, agent: agent}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat/history", s.handleChatHistory)
	mux.HandleFunc("/api/chat/clear", s.handleChatClear)
	mux.HandleFunc("/api/debugger/status", s.handleStatus)
	mux.HandleFunc("/api/console/events", s.handleConsoleEvents)
	mux.HandleFunc("/api/console/clear", s.handleConsoleClear)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("console connected: %s", r.RemoteAddr)
	c := s.hub.Add(conn)

	go func() {
		defer func() {
			s.hub.Remove(c)
			log.Printf("console disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req protocol.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ChatResponse{Error: "invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, protocol.ChatResponse{Error: "message is required"})
		return
	}

	response, err := s.agent.Chat(message)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, protocol.ChatResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, protocol.ChatResponse{Success: true, Response: response})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.HistoryResponse{
		Success: true,
		History: s.agent.History(),
	})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.agent.ClearChat()
	writeJSON(w, http.StatusOK, protocol.AckResponse{Success: true, Message: "Chat history cleared"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Status())
}

func (s *Server) handleConsoleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.agent.ConsoleEvents()
	if events == nil {
		events = []protocol.DebuggerEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleConsoleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.agent.ClearConsole()
	writeJSON(w, http.StatusOK, protocol.AckResponse{Success: true, Message: "Console cleared"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// checkOrigin admits same-host and loopback origins. The simulator is a
// local development tool and is not meant to be exposed beyond localhost.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}

	return false
}

func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
