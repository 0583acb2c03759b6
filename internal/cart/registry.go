package cart

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Registry hands out stores per cart session over a shared slot and bus.
// Stores are cheap views; the registry keeps no per-session state beyond
// the locks of slots currently being written.
type Registry struct {
	slot  Slot
	bus   *Bus
	log   *zap.Logger
	locks *slotLocks
}

func NewRegistry(slot Slot, bus *Bus, log *zap.Logger) *Registry {
	if bus == nil {
		bus = NewBus()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{slot: slot, bus: bus, log: log, locks: newSlotLocks()}
}

// SlotKey names the slot of a session. An empty session uses the bare
// SlotName.
func SlotKey(session string) string {
	if session == "" {
		return SlotName
	}
	return SlotName + ":" + session
}

// Store returns the store of session. Every store of the same session
// shares one lock and one set of listeners.
func (r *Registry) Store(session string) *Store {
	return r.storeFor(SlotKey(session))
}

func (r *Registry) storeFor(key string) *Store {
	return newStore(r.slot, key, r.bus, r.log, r.locks)
}

// Bus is the event bus shared by every store.
func (r *Registry) Bus() *Bus { return r.bus }

// Watch forwards changes made by other processes to local listeners. It
// only does something when the slot implements Watcher, and blocks until
// ctx is done.
func (r *Registry) Watch(ctx context.Context) error {
	w, ok := r.slot.(Watcher)
	if !ok {
		<-ctx.Done()
		return nil
	}
	r.log.Info("watching cart slots for remote changes")
	return w.Watch(ctx, func(key string) {
		if key != SlotName && !strings.HasPrefix(key, SlotName+":") {
			return
		}
		if r.bus.Listeners(key) == 0 {
			// Nobody here is listening to this cart.
			return
		}
		r.storeFor(key).Refresh(ctx)
	})
}
