package cart

import (
	"context"

	"github.com/01moynul/taptosell-storefront/internal/models"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// SlotName is the key of the persisted cart.
const SlotName = "cart_v1"

// Store reads and writes one cart slot. Read failures degrade to an empty
// cart and write failures are logged; neither reaches the caller.
type Store struct {
	slot Slot
	key  string
	bus  *Bus
	log  *zap.Logger

	// locks serializes read-modify-write cycles on a slot within the
	// process. Stores of the same key must share it.
	locks *slotLocks
}

// NewStore binds a store to key on slot. Events go out on bus. Use a
// Registry when several stores may touch the same key.
func NewStore(slot Slot, key string, bus *Bus, log *zap.Logger) *Store {
	return newStore(slot, key, bus, log, newSlotLocks())
}

func newStore(slot Slot, key string, bus *Bus, log *zap.Logger, locks *slotLocks) *Store {
	if bus == nil {
		bus = NewBus()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{slot: slot, key: key, bus: bus, log: log.With(zap.String("slot", key)), locks: locks}
}

// Key is the slot name this store persists to.
func (s *Store) Key() string { return s.key }

// GetItems returns the persisted line items, or an empty list when the slot
// is missing, empty or unparseable.
func (s *Store) GetItems(ctx context.Context) []models.LineItem {
	raw, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("could not read cart", zap.Error(err))
		return []models.LineItem{}
	}
	if !ok || len(raw) == 0 {
		return []models.LineItem{}
	}
	var items []models.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("cart parse error", zap.Error(err))
		return []models.LineItem{}
	}
	if items == nil {
		items = []models.LineItem{}
	}
	return items
}

// SetItems persists items as the whole cart and notifies listeners. The
// given items are returned even when persisting failed.
func (s *Store) SetItems(ctx context.Context, items []models.LineItem) []models.LineItem {
	defer s.locks.lock(s.key)()
	return s.commit(ctx, items)
}

// Clear removes the persisted cart and broadcasts an empty item list.
func (s *Store) Clear(ctx context.Context) {
	defer s.locks.lock(s.key)()
	if err := s.slot.Remove(ctx, s.key); err != nil {
		s.log.Warn("could not clear cart", zap.Error(err))
	}
	s.bus.Publish(Event{Slot: s.key, Items: []models.LineItem{}, Origin: OriginLocal})
}

// Subscribe registers fn for every change to this cart.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.bus.Subscribe(s.key, fn)
}

// Refresh re-reads the slot after another process changed it and tells the
// local listeners.
func (s *Store) Refresh(ctx context.Context) {
	s.bus.Publish(Event{Slot: s.key, Items: s.GetItems(ctx), Origin: OriginRemote})
}

// update runs one read-modify-write cycle under the store lock. When fn
// returns an error nothing is written.
func (s *Store) update(ctx context.Context, fn func([]models.LineItem) ([]models.LineItem, error)) ([]models.LineItem, error) {
	defer s.locks.lock(s.key)()
	items, err := fn(s.GetItems(ctx))
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, items), nil
}

func (s *Store) commit(ctx context.Context, items []models.LineItem) []models.LineItem {
	if items == nil {
		items = []models.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("could not encode cart", zap.Error(err))
	} else if err := s.slot.Set(ctx, s.key, raw); err != nil {
		s.log.Warn("could not save cart", zap.Error(err))
	}
	s.bus.Publish(Event{Slot: s.key, Items: items, Origin: OriginLocal})
	return items
}
