// Package events provides an in-process publish/subscribe bus with a bounded
// log of recent events.
package events

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies an event type.
type Kind string

const (
	PersonCreated       Kind = "person_created"
	PersonUpdated       Kind = "person_updated"
	ConversationCreated Kind = "conversation_created"
	MemoryCreated       Kind = "memory_created"
)

// DefaultLogSize is the number of events kept when NewBus is given zero.
const DefaultLogSize = 256

// Event is a published notification.
type Event struct {
	ID        string                 `json:"id"`
	Kind      Kind                   `json:"kind"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine.
type Handler func(Event)

// Bus fans events out to subscribers and keeps the most recent ones.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	all      []Handler
	log      []Event
	maxLog   int
}

// NewBus creates a bus keeping at most maxLog events.
func NewBus(maxLog int) *Bus {
	if maxLog <= 0 {
		maxLog = DefaultLogSize
	}
	return &Bus{
		handlers: make(map[Kind][]Handler),
		maxLog:   maxLog,
	}
}

// Subscribe registers h for events of the given kind.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish records e and calls its subscribers. ID and Timestamp are filled
// in when empty.
func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.Lock()
	b.log = append(b.log, e)
	if over := len(b.log) - b.maxLog; over > 0 {
		b.log = append(b.log[:0:0], b.log[over:]...)
	}
	handlers := make([]Handler, 0, len(b.handlers[e.Kind])+len(b.all))
	handlers = append(handlers, b.handlers[e.Kind]...)
	handlers = append(handlers, b.all...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns the whole log.
func (b *Bus) Recent(limit int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 || limit > len(b.log) {
		limit = len(b.log)
	}
	out := make([]Event, 0, limit)
	for i := len(b.log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, b.log[i])
	}
	return out
}
