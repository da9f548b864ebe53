package client

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/debug-agent/console/internal/bus"
	"github.com/debug-agent/console/internal/protocol"
	"github.com/gorilla/websocket"
)

const defaultReconnectDelay = 1 * time.Second

// Bus event names emitted by the Transport. Connected fires both on channel
// open and on the server's handshake message; subscribers for the two wire
// events receive the raw JSON payload.
const (
	BusEventConnected    = "connected"
	BusEventDisconnected = "disconnected"
	BusEventDebugger     = string(protocol.MsgDebuggerEvent)
	BusEventToolCall     = string(protocol.MsgToolCallUpdate)
)

// ConnState is the connection lifecycle state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Transport owns the persistent WebSocket channel to the backend. It dials,
// decodes message envelopes onto the bus, and schedules exactly one reconnect
// attempt after an unexpected closure while the caller still wants to stay
// connected. All inbound dispatch happens on a single read-loop goroutine.
type Transport struct {
	url            string
	bus            *bus.Bus
	dialer         *websocket.Dialer
	reconnectDelay time.Duration

	mu        sync.Mutex
	state     ConnState
	intent    bool // stay connected across drops
	attempts  int
	conn      *websocket.Conn
	reconnect *time.Timer
}

// NewTransport creates a transport targeting the given WebSocket URL.
// Events are published on b; the caller owns both.
func NewTransport(url string, b *bus.Bus) *Transport {
	return &Transport{
		url:            url,
		bus:            b,
		dialer:         websocket.DefaultDialer,
		reconnectDelay: defaultReconnectDelay,
	}
}

// SetReconnectDelay overrides the retry backoff. Call before Connect.
func (t *Transport) SetReconnectDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.reconnectDelay = d
	t.mu.Unlock()
}

// State returns the current connection state.
func (t *Transport) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Attempts returns how many connection attempts have been made.
func (t *Transport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Connect opens the channel. It is idempotent: if the transport is already
// connected or an attempt is in progress the call returns immediately.
// Dial errors are not returned; they surface as a disconnected bus event and
// a retry while intent holds.
func (t *Transport) Connect() {
	t.mu.Lock()
	if t.state != Disconnected {
		t.mu.Unlock()
		return
	}
	t.state = Connecting
	t.intent = true
	t.attempts++
	t.stopReconnectLocked()
	if t.conn != nil {
		// Stale handle from an earlier attempt.
		t.conn.Close()
		t.conn = nil
	}
	t.mu.Unlock()

	go t.dial()
}

// Disconnect closes the channel and cancels any pending reconnect. Safe to
// call at any time, including with no open connection.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.intent = false
	t.stopReconnectLocked()
	conn := t.conn
	t.conn = nil
	wasConnected := t.state == Connected
	t.state = Disconnected
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		t.bus.Emit(BusEventDisconnected, nil)
	}
}

func (t *Transport) dial() {
	conn, _, err := t.dialer.Dial(t.url, nil)

	t.mu.Lock()
	if !t.intent {
		// Disconnect raced the dial; discard the result.
		t.state = Disconnected
		t.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		t.state = Disconnected
		t.scheduleReconnectLocked()
		t.mu.Unlock()
		log.Printf("transport: dial %s: %v", t.url, err)
		t.bus.Emit(BusEventDisconnected, err)
		return
	}
	t.conn = conn
	t.state = Connected
	t.mu.Unlock()

	t.bus.Emit(BusEventConnected, protocol.ConnectedPayload{})
	go t.readLoop(conn)
}

// readLoop reads until the connection drops, dispatching each decoded
// envelope. On exit it schedules a reconnect unless the closure was local.
func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		t.dispatch(data)
	}

	conn.Close()

	t.mu.Lock()
	if t.conn != conn {
		// A newer connection already replaced this one.
		t.mu.Unlock()
		return
	}
	t.conn = nil
	t.state = Disconnected
	unexpected := t.intent
	if unexpected {
		t.scheduleReconnectLocked()
	}
	t.mu.Unlock()

	if unexpected {
		t.bus.Emit(BusEventDisconnected, nil)
	}
}

// scheduleReconnectLocked arms the reconnect timer if intent holds and no
// timer is already pending. Callers must hold t.mu.
func (t *Transport) scheduleReconnectLocked() {
	if t.reconnect != nil || !t.intent || t.state == Connected {
		return
	}
	t.reconnect = time.AfterFunc(t.reconnectDelay, func() {
		t.mu.Lock()
		t.reconnect = nil
		t.mu.Unlock()
		t.Connect()
	})
}

func (t *Transport) stopReconnectLocked() {
	if t.reconnect != nil {
		t.reconnect.Stop()
		t.reconnect = nil
	}
}

func (t *Transport) dispatch(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("transport: malformed message: %v", err)
		return
	}

	switch env.Type {
	case protocol.MsgConnected:
		var p protocol.ConnectedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("transport: malformed handshake: %v", err)
			return
		}
		t.bus.Emit(BusEventConnected, p)
	case protocol.MsgDebuggerEvent:
		t.bus.Emit(BusEventDebugger, env.Payload)
	case protocol.MsgToolCallUpdate:
		t.bus.Emit(BusEventToolCall, env.Payload)
	default:
		log.Printf("transport: unknown message type %q", env.Type)
	}
}
