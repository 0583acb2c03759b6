package cart

import (
	"sync"

	"github.com/01moynul/taptosell-storefront/internal/models"
)

// Origin says where a change was made.
type Origin int

const (
	// OriginLocal changes were made through this process.
	OriginLocal Origin = iota
	// OriginRemote changes were made by another process sharing the slot.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Event announces the new contents of a cart slot.
type Event struct {
	Slot   string            `json:"slot"`
	Items  []models.LineItem `json:"items"`
	Origin Origin            `json:"-"`
}

// Bus delivers cart events to the listeners of one slot.
type Bus struct {
	mu        sync.RWMutex
	next      int
	listeners map[string]map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{listeners: map[string]map[int]func(Event){}}
}

// Subscribe registers fn for events on slot. The returned function removes
// it and is safe to call more than once.
func (b *Bus) Subscribe(slot string, fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.listeners[slot] == nil {
		b.listeners[slot] = map[int]func(Event){}
	}
	b.listeners[slot][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[slot], id)
			if len(b.listeners[slot]) == 0 {
				delete(b.listeners, slot)
			}
		})
	}
}

// Publish calls every listener of ev.Slot synchronously. Listeners must not
// block.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.listeners[ev.Slot]))
	for _, fn := range b.listeners[ev.Slot] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	if ev.Items == nil {
		ev.Items = []models.LineItem{}
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners counts subscriptions on slot.
func (b *Bus) Listeners(slot string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[slot])
}
