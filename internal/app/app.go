// Package app wires the transport, event bus and session state into the root
// Bubble Tea model.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/debug-agent/console/internal/bus"
	"github.com/debug-agent/console/internal/client"
	"github.com/debug-agent/console/internal/config"
	"github.com/debug-agent/console/internal/protocol"
	"github.com/debug-agent/console/internal/session"
	"github.com/debug-agent/console/internal/theme"
	"github.com/debug-agent/console/internal/views/chat"
	"github.com/debug-agent/console/internal/views/console"
	"github.com/debug-agent/console/internal/views/status"
)

// Focus selects which pane scroll keys act on.
type Focus int

const (
	FocusChat Focus = iota
	FocusConsole
)

// --- messages ---

// busMsg carries a bus event name into the Bubble Tea loop. The data handlers
// (correlator, console log) have already run by the time it arrives; the model
// only needs to refresh its snapshots.
type busMsg string

type statusTickMsg struct{}

type statusMsg struct {
	status *protocol.DebuggerStatus
	err    error
}

type chatDoneMsg struct {
	response string
	err      error
}

type historyMsg struct {
	history []protocol.HistoryMessage
	err     error
}

type consoleEventsMsg struct {
	events []protocol.DebuggerEvent
	err    error
}

type clearedMsg struct {
	what string // "console" or "chat"
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	transport *client.Transport
	api       *client.API
	cfg       *config.Config

	transcript *session.Transcript
	correlator *session.Correlator
	consoleLog *session.ConsoleLog

	events chan string
	subs   []func()

	keys   KeyMap
	width  int
	height int
	focus  Focus

	input     textinput.Model
	spin      spinner.Model
	sending   bool
	connected bool
	hydrated  bool

	statusBar   status.Model
	chatPane    chat.Model
	consolePane console.Model
}

// New constructs the root model and subscribes the session components to b.
// The returned model owns the subscription handles and cancels them on quit.
func New(tr *client.Transport, api *client.API, b *bus.Bus, cfg *config.Config) Model {
	transcript := session.NewTranscript()

	m := Model{
		transport:   tr,
		api:         api,
		cfg:         cfg,
		transcript:  transcript,
		correlator:  session.NewCorrelator(transcript),
		consoleLog:  session.NewConsoleLog(cfg.Console.ConsoleCap),
		events:      make(chan string, 256),
		keys:        DefaultKeyMap(),
		statusBar:   status.New(),
		chatPane:    chat.New(),
		consolePane: console.New(),
	}

	m.input = textinput.New()
	m.input.Placeholder = "ask the debug agent..."
	m.input.Prompt = "> "
	m.input.Focus()

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = lipgloss.NewStyle().Foreground(theme.ColorAssistant)

	// Data handlers first, forwarders second: by the time the model wakes up
	// the session state already reflects the event.
	consoleLog := m.consoleLog
	correlator := m.correlator
	m.subs = []func(){
		b.Subscribe(client.BusEventDebugger, func(p any) {
			if raw, ok := p.(json.RawMessage); ok {
				consoleLog.HandleRaw(raw)
			}
		}),
		b.Subscribe(client.BusEventToolCall, func(p any) {
			if raw, ok := p.(json.RawMessage); ok {
				correlator.HandleRaw(raw)
			}
		}),
		b.Subscribe(client.BusEventConnected, m.forward(client.BusEventConnected)),
		b.Subscribe(client.BusEventDisconnected, m.forward(client.BusEventDisconnected)),
		b.Subscribe(client.BusEventDebugger, m.forward(client.BusEventDebugger)),
		b.Subscribe(client.BusEventToolCall, m.forward(client.BusEventToolCall)),
	}

	return m
}

// forward returns a handler pushing the event name into the model's wake-up
// channel. The send never blocks dispatch; under a flood the model simply
// refreshes once for the whole burst.
func (m Model) forward(name string) bus.Handler {
	ch := m.events
	return func(any) {
		select {
		case ch <- name:
		default:
		}
	}
}

// Init connects the transport and starts the event pump and status poll.
func (m Model) Init() tea.Cmd {
	tr := m.transport
	connect := func() tea.Msg {
		tr.Connect()
		return nil
	}
	return tea.Batch(connect, m.waitForEvent(), m.statusTick(), textinput.Blink)
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg { return busMsg(<-ch) }
}

func (m Model) statusTick() tea.Cmd {
	return tea.Tick(m.cfg.Console.StatusPollInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m Model) fetchStatus() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		s, err := api.Status()
		return statusMsg{status: s, err: err}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		h, err := api.ChatHistory()
		return historyMsg{history: h, err: err}
	}
}

func (m Model) fetchConsoleEvents() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ev, err := api.ConsoleEvents()
		return consoleEventsMsg{events: ev, err: err}
	}
}

func (m Model) sendChat(message string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		resp, err := api.SendChat(message)
		if err != nil {
			return chatDoneMsg{err: err}
		}
		return chatDoneMsg{response: resp.Response}
	}
}

func (m Model) clearRemote(what string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		var err error
		if what == "console" {
			err = api.ClearConsole()
		} else {
			err = api.ClearChat()
		}
		return clearedMsg{what: what, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.chatPane.SetWidth(m.chatWidth())
		m.input.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case busMsg:
		switch string(msg) {
		case client.BusEventConnected:
			m.connected = true
			m.statusBar.Connected = true
			if !m.hydrated {
				m.hydrated = true
				m.refresh()
				return m, tea.Batch(m.waitForEvent(), m.fetchHistory(), m.fetchConsoleEvents())
			}
		case client.BusEventDisconnected:
			m.connected = false
			m.hydrated = false
			m.statusBar.Connected = false
		}
		m.refresh()
		return m, m.waitForEvent()

	case statusTickMsg:
		return m, tea.Batch(m.fetchStatus(), m.statusTick())

	case statusMsg:
		if msg.err != nil {
			m.statusBar.SetStatus(nil)
		} else {
			m.statusBar.SetStatus(msg.status)
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			log.Printf("app: history fetch: %v", msg.err)
			return m, nil
		}
		m.transcript.Replace(session.FromHistory(msg.history))
		m.refresh()
		return m, nil

	case consoleEventsMsg:
		if msg.err != nil {
			log.Printf("app: console fetch: %v", msg.err)
			return m, nil
		}
		m.consoleLog.Replace(msg.events)
		m.refresh()
		return m, nil

	case chatDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.transcript.AppendError(fmt.Sprintf("chat failed: %v", msg.err))
		} else {
			m.transcript.AppendAssistant(msg.response)
		}
		m.chatPane.ScrollToBottom()
		m.refresh()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.transcript.AppendError(fmt.Sprintf("clear %s failed: %v", msg.what, msg.err))
		} else if msg.what == "console" {
			m.consoleLog.Clear()
		} else {
			m.transcript.Clear()
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		for _, cancel := range m.subs {
			cancel()
		}
		m.transport.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		message := m.input.Value()
		if message == "" || m.sending {
			return m, nil
		}
		m.input.Reset()
		m.sending = true
		m.transcript.AppendUser(message)
		m.chatPane.ScrollToBottom()
		m.refresh()
		return m, tea.Batch(m.sendChat(message), m.spin.Tick)

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == FocusChat {
			m.focus = FocusConsole
		} else {
			m.focus = FocusChat
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		if m.focus == FocusConsole {
			m.consolePane.ScrollUp(5)
		} else {
			m.chatPane.ScrollUp(5)
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		if m.focus == FocusConsole {
			m.consolePane.ScrollDown(5)
		} else {
			m.chatPane.ScrollDown(5)
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearConsole):
		return m, m.clearRemote("console")

	case key.Matches(msg, m.keys.ClearChat):
		return m, m.clearRemote("chat")
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh pulls fresh snapshots into the panes.
func (m *Model) refresh() {
	m.chatPane.SetMessages(m.transcript.Messages())
	m.consolePane.SetEvents(m.consoleLog.Events())
}

func (m Model) chatWidth() int {
	w := m.width * 3 / 5
	if w < 40 {
		w = 40
	}
	return w
}

// View renders the full console.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	paneHeight := m.height - 5
	chatW := m.chatWidth()
	consoleW := m.width - chatW

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.chatPane.View(chatW, paneHeight, m.focus == FocusChat),
		m.consolePane.View(consoleW, paneHeight, m.focus == FocusConsole),
	)

	inputLine := m.input.View()
	if m.sending {
		inputLine = m.spin.View() + " " + inputLine
	}

	help := theme.StyleDimmed.Render("  enter:send  tab:pane  pgup/pgdn:scroll  ctrl+l:clear console  ctrl+x:clear chat  ctrl+c:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		panes,
		inputLine,
		help,
	)
}
