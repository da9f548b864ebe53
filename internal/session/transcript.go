package session

import (
	"sync"
	"time"
)

// Transcript is the ordered message sequence shown in the chat pane.
// User, assistant and error messages are append-only; tool-call messages are
// appended once on start and thereafter mutated through their invocation.
type Transcript struct {
	mu       sync.Mutex
	messages []*Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser appends a user message.
func (t *Transcript) AppendUser(content string) {
	t.append(&Message{Role: RoleUser, Content: content, Timestamp: time.Now()})
}

// AppendAssistant appends an assistant message.
func (t *Transcript) AppendAssistant(content string) {
	t.append(&Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()})
}

// AppendError appends a locally generated error entry.
func (t *Transcript) AppendError(content string) {
	t.append(&Message{Role: RoleError, Content: content, Timestamp: time.Now()})
}

func (t *Transcript) append(m *Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

// appendToolCallLocked appends the transcript record for a new invocation.
// Callers must hold t.mu (the correlator mutates invocations under the same
// lock that guards snapshots).
func (t *Transcript) appendToolCallLocked(inv *ToolInvocation) {
	t.messages = append(t.messages, &Message{
		Role:       RoleToolCall,
		Timestamp:  inv.CreatedAt,
		Invocation: inv,
	})
}

// Replace swaps the whole transcript, used when hydrating from the server.
func (t *Transcript) Replace(msgs []*Message) {
	t.mu.Lock()
	t.messages = append([]*Message(nil), msgs...)
	t.mu.Unlock()
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Messages returns a snapshot. Invocations are copied by value so renderers
// never observe a half-applied correlator mutation.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, 0, len(t.messages))
	for _, m := range t.messages {
		cp := *m
		if m.Invocation != nil {
			inv := *m.Invocation
			cp.Invocation = &inv
		}
		out = append(out, cp)
	}
	return out
}
