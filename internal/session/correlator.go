package session

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/debug-agent/console/internal/protocol"
)

// Correlator maps asynchronous tool_call_update messages onto single mutable
// transcript records. Valid transitions per invocation are
// started → completed|failed; completions and errors that cannot be matched
// produce an orphan record with status unknown rather than being dropped.
//
// Resolution for an update without a tool_call_id falls back to the earliest
// still-started invocation with the same tool name. The backend sends ids for
// every call, so the fallback only matters for foreign or degraded senders.
type Correlator struct {
	transcript *Transcript
	byID       map[string]*ToolInvocation
	pending    []*ToolInvocation // started invocations in creation order
}

// NewCorrelator creates a correlator appending to the given transcript.
func NewCorrelator(t *Transcript) *Correlator {
	return &Correlator{
		transcript: t,
		byID:       make(map[string]*ToolInvocation),
	}
}

// HandleRaw decodes a tool_call_update payload and applies it. Malformed
// payloads degrade to an error entry in the transcript; nothing is dropped
// silently and nothing panics.
func (c *Correlator) HandleRaw(payload json.RawMessage) {
	var p protocol.ToolCallUpdatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("correlator: malformed tool call update: %v", err)
		c.transcript.AppendError(fmt.Sprintf("unreadable tool call update: %s", compact(payload)))
		return
	}
	c.Handle(p.ToolCall, payload)
}

// Handle applies one lifecycle update. raw is the original payload, used for
// the generic fallback entry when the update type is unrecognized.
func (c *Correlator) Handle(tc protocol.ToolCall, raw json.RawMessage) {
	c.transcript.mu.Lock()
	defer c.transcript.mu.Unlock()

	now := time.Now()
	switch tc.Type {
	case protocol.ToolCallStart:
		inv := &ToolInvocation{
			ID:        tc.ToolCallID,
			Name:      tc.ToolName,
			Arguments: tc.Arguments,
			Status:    StatusStarted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if inv.ID != "" {
			c.byID[inv.ID] = inv
		}
		c.pending = append(c.pending, inv)
		c.transcript.appendToolCallLocked(inv)

	case protocol.ToolCallComplete, protocol.ToolCallError:
		inv := c.resolveLocked(tc)
		if inv == nil {
			c.appendOrphanLocked(tc, now)
			return
		}
		c.settleLocked(inv, tc, now)

	default:
		// Never crash on an unknown kind; keep the raw payload visible.
		c.transcript.messages = append(c.transcript.messages, &Message{
			Role:      RoleError,
			Content:   fmt.Sprintf("unrecognized tool call update: %s", compact(raw)),
			Timestamp: now,
		})
	}
}

// resolveLocked finds the invocation targeted by a terminal update. An
// explicit id is authoritative: when present and unmatched there is no name
// fallback. Without an id, the earliest still-started invocation with the
// same name wins. Only started invocations are match targets: a duplicate or
// late terminal update for an already settled record is a miss, so the
// settled record keeps its status and the update surfaces as an orphan.
func (c *Correlator) resolveLocked(tc protocol.ToolCall) *ToolInvocation {
	if tc.ToolCallID != "" {
		inv := c.byID[tc.ToolCallID]
		if inv == nil || inv.Status.Terminal() {
			return nil
		}
		return inv
	}
	for _, inv := range c.pending {
		if inv.Status == StatusStarted && inv.Name == tc.ToolName {
			return inv
		}
	}
	return nil
}

func (c *Correlator) settleLocked(inv *ToolInvocation, tc protocol.ToolCall, now time.Time) {
	inv.UpdatedAt = now

	switch {
	case tc.Type == protocol.ToolCallError:
		inv.Status = StatusFailed
		inv.Err = tc.Error
	case tc.Result != nil && tc.Result.Success:
		inv.Status = StatusCompleted
		inv.Result = tc.Result.Data
	case tc.Result != nil:
		inv.Status = StatusFailed
		inv.Err = tc.Result.Error
	default:
		// Complete with no result body counts as success with no data.
		inv.Status = StatusCompleted
	}

	c.removePendingLocked(inv)
}

// appendOrphanLocked records a terminal update that matched nothing. The
// event stays visible as a historical record instead of being discarded.
func (c *Correlator) appendOrphanLocked(tc protocol.ToolCall, now time.Time) {
	inv := &ToolInvocation{
		ID:        tc.ToolCallID,
		Name:      tc.ToolName,
		Arguments: tc.Arguments,
		Status:    StatusUnknown,
		Err:       tc.Error,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tc.Result != nil {
		inv.Result = tc.Result.Data
		if inv.Err == "" {
			inv.Err = tc.Result.Error
		}
	}
	c.transcript.appendToolCallLocked(inv)
}

func (c *Correlator) removePendingLocked(inv *ToolInvocation) {
	for i, cur := range c.pending {
		if cur == inv {
			c.pending = append(c.pending[:i:i], c.pending[i+1:]...)
			return
		}
	}
}

// PendingCount returns how many invocations are still started. A reconnect
// does not settle them; they stay pending until a terminal update arrives.
func (c *Correlator) PendingCount() int {
	c.transcript.mu.Lock()
	defer c.transcript.mu.Unlock()
	return len(c.pending)
}

func compact(raw json.RawMessage) string {
	const max = 200
	s := string(raw)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
