// Package bus is a small in-process pub/sub used to decouple the relay
// pipeline from its observers (metrics, diagnostics).
package bus

import (
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Event is one relay lifecycle notification.
type Event struct {
	Type       string         // one of the Event* constants
	DeliveryID string         // correlation id of the webhook delivery
	Payload    map[string]any // event-specific data
	Timestamp  time.Time
}

// Handler is a callback for events.
type Handler func(Event)

// Bus dispatches events synchronously to registered handlers. A handler
// panic is recovered and logged; it never reaches the pipeline.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	logger   *slog.Logger
}

type namedHandler struct {
	id string
	fn Handler
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]namedHandler),
		logger:   logger,
	}
}

// On registers a handler for eventType; "*" receives every event.
// The returned id can be passed to Off.
func (b *Bus) On(eventType string, fn Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := eventType + "-" + strconv.Itoa(len(b.handlers[eventType]))
	b.handlers[eventType] = append(b.handlers[eventType], namedHandler{id: id, fn: fn})
	return id
}

// Off removes a handler by its id.
func (b *Bus) Off(eventType, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.id == id {
			b.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return
		}
	}
}

// Emit delivers the event to all matching handlers in registration order.
func (b *Bus) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]namedHandler, 0, len(b.handlers[event.Type])+len(b.handlers["*"]))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.handlers["*"]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		func(nh namedHandler) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("bus handler panic", "event", event.Type, "handler", nh.id, "panic", r)
				}
			}()
			nh.fn(event)
		}(h)
	}
}

// Relay lifecycle event types.
const (
	EventDeliveryReceived = "relay.delivery.received"
	EventEventSkipped     = "relay.event.skipped"
	EventEventIgnored     = "relay.event.ignored"
	EventEventReplied     = "relay.event.replied"
	EventEventSilent      = "relay.event.silent"
	EventEventFailed      = "relay.event.failed"
	EventEngineError      = "relay.engine.error"
)
