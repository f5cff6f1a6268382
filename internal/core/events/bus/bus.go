// Package bus is the in-process event bus for scene lifecycle and component
// events. Delivery is synchronous on the publishing goroutine, which in this
// host is the main loop, so handlers observe a consistent graph.
package bus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

type Event struct {
	Type   string
	Source string
	At     time.Time
	Data   any
}

type Handler func(Event) error

type subscription struct {
	id        string
	eventType string
	handler   Handler
}

type Bus struct {
	mu sync.RWMutex
	// eventType -> subID -> subscription
	handlers map[string]map[string]*subscription
}

func New() *Bus {
	return &Bus{
		handlers: make(map[string]map[string]*subscription),
	}
}

// Subscribe registers handler for eventType (or Wildcard) and returns an
// unsubscribe func. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	b.handlers[eventType][id] = &subscription{id: id, eventType: eventType, handler: handler}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.handlers[eventType]; ok {
			delete(m, id)
		}
	}
}

// Publish delivers event to all matching handlers synchronously. Handler
// errors and recovered panics are joined; a failing handler never blocks the
// rest.
func (b *Bus) Publish(event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]*subscription, 0, 4)
	if m := b.handlers[event.Type]; m != nil {
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	if m := b.handlers[Wildcard]; m != nil {
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	var all error
	for _, s := range subs {
		if err := b.call(s, event); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

// Emit is shorthand for Publish with just type, source and payload.
func (b *Bus) Emit(eventType, source string, data any) error {
	return b.Publish(Event{Type: eventType, Source: source, Data: data})
}

func (b *Bus) call(s *subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %s panicked: %v", s.eventType, r)
		}
	}()
	return s.handler(event)
}

// Subscribers reports the handler count for an event type, wildcards included.
func (b *Bus) Subscribers(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) + len(b.handlers[Wildcard])
}
