// Package bus implements the event fan-out layer between the transport and
// its subscribers. Delivery is synchronous: Emit runs every handler registered
// for the event, in registration order, before returning.
package bus

import (
	"log"
	"sync"
)

// Handler is a callback invoked with the event payload.
type Handler func(payload any)

type subscription struct {
	fn     Handler
	active bool
}

// Bus is a per-event-name subscriber registry.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// Subscribe registers fn for the named event and returns a cancel function.
// Cancelling is idempotent; the same fn may be registered more than once and
// each registration is cancelled independently through its own handle.
func (b *Bus) Subscribe(event string, fn Handler) (cancel func()) {
	s := &subscription{fn: fn, active: true}

	b.mu.Lock()
	b.subs[event] = append(b.subs[event], s)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !s.active {
			return
		}
		s.active = false
		list := b.subs[event]
		for i, cur := range list {
			if cur == s {
				b.subs[event] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers payload to every handler registered for event at the moment
// emission begins, in registration order. Handlers registered during the
// emission do not see it. A panicking handler is logged and skipped; the
// remaining handlers still run.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	list := b.subs[event]
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.mu.Lock()
		active := s.active
		b.mu.Unlock()
		if !active {
			continue
		}
		invoke(event, s.fn, payload)
	}
}

func invoke(event string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bus: handler for %q panicked: %v", event, r)
		}
	}()
	fn(payload)
}
