package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event is one notification delivered to subscribed UI clients.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Emitter is what producing components (monitor, overlay, updater) hold.
type Emitter interface {
	Emit(name string, payload interface{})
}

// Bus fans events out to subscribers. Slow subscribers lose events rather
// than blocking the producer; the clipboard thread must never stall on a
// UI client.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool
	logger *zap.Logger
}

// NewBus creates an event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]chan Event),
		logger: logger,
	}
}

// Emit delivers the event to every subscriber without blocking.
func (b *Bus) Emit(name string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- Event{Name: name, Payload: payload}:
		default:
			b.logger.Debug("event dropped for slow subscriber",
				zap.Uint64("subscriber", id),
				zap.String("event", name))
		}
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (b *Bus) Subscribe(buffer int) (uint64, <-chan Event) {
	if buffer <= 0 {
		buffer = 16
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Close shuts the bus down, closing every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// NoOp implements Emitter and discards everything. It stands in when no
// UI is attached, so producers never need a nil check.
type NoOp struct {
	logger *zap.Logger
}

// NewNoOp creates a NoOp emitter.
func NewNoOp(logger *zap.Logger) *NoOp {
	return &NoOp{logger: logger}
}

// Emit logs the event at debug level and drops it.
func (n *NoOp) Emit(name string, payload interface{}) {
	if n.logger != nil {
		n.logger.Debug("event emission skipped (no-op)",
			zap.String("event", name))
	}
}
