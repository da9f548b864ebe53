package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/debug-agent/console/internal/protocol"
)

// API makes REST calls to the Debug Agent backend.
type API struct {
	baseURL string
	client  *http.Client
}

// NewAPI creates a client targeting the given base URL (e.g. "http://127.0.0.1:5174").
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SendChat posts a user message and returns the assistant reply.
func (a *API) SendChat(message string) (*protocol.ChatResponse, error) {
	var out protocol.ChatResponse
	if err := a.post("/api/chat", protocol.ChatRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("chat rejected: %s", out.Error)
	}
	return &out, nil
}

// ChatHistory fetches the server-side transcript.
func (a *API) ChatHistory() ([]protocol.HistoryMessage, error) {
	var out protocol.HistoryResponse
	if err := a.get("/api/chat/history", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("history rejected: %s", out.Error)
	}
	return out.History, nil
}

// ClearChat clears the server-side transcript.
func (a *API) ClearChat() error {
	var out protocol.AckResponse
	if err := a.post("/api/chat/clear", nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("clear chat rejected: %s", out.Error)
	}
	return nil
}

// Status fetches the debugger status panel data.
func (a *API) Status() (*protocol.DebuggerStatus, error) {
	var s protocol.DebuggerStatus
	if err := a.get("/api/debugger/status", &s); err != nil {
		return nil, err
	}
	if s.Error != "" {
		return nil, fmt.Errorf("status: %s", s.Error)
	}
	return &s, nil
}

// ConsoleEvents fetches the stored console events.
func (a *API) ConsoleEvents() ([]protocol.DebuggerEvent, error) {
	var out []protocol.DebuggerEvent
	if err := a.get("/api/console/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearConsole clears the server-side console log.
func (a *API) ClearConsole() error {
	var out protocol.AckResponse
	if err := a.post("/api/console/clear", nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("clear console rejected: %s", out.Error)
	}
	return nil
}

func (a *API) get(path string, out any) error {
	resp, err := a.client.Get(a.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) post(path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
