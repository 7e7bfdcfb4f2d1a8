package events

import "sync"

// Listener receives every event published on a Bus. Listeners must not block:
// the bus delivers synchronously on the emitting goroutine, after the mutation
// that produced the event has already committed.
type Listener func(Event)

// Bus is the engine's notification port. Emission never mutates engine state
// and a panicking listener is the listener's bug, not the engine's.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener for all subsequent events.
func (b *Bus) Subscribe(l Listener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Emit delivers ev to every registered listener in subscription order.
// A nil bus or nil event is a no-op so engine code can emit unconditionally.
func (b *Bus) Emit(ev Event) {
	if b == nil || ev == nil {
		return
	}

	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}
