package cart

import (
	"context"
	"math"
	"testing"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var cabin = models.Product{ID: "LG-1", Name: "Cabin Case", Price: 120, Size: "S", Color: "red"}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemorySlot(), SlotName, NewBus(), zaptest.NewLogger(t))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "LG-1-S-red", Key(cabin))
	assert.Equal(t, "x-default-default", Key(models.Product{ID: "x"}))
	assert.Equal(t, "x-M-default", Key(models.Product{ID: "x", Size: "M"}))
}

func TestAddSameProductTwiceMerges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	_, err := s.AddToCart(ctx, cabin, 1)
	require.NoError(t, err)
	items, err := s.AddToCart(ctx, cabin, 1)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, models.Quantity(2), items[0].Qty)
	assert.Equal(t, "LG-1-S-red", items[0].CartKey)
	assert.Equal(t, "Cabin Case", items[0].Name)
	assert.Equal(t, items, s.GetItems(ctx))
	require.Len(t, events, 2)
	assert.Equal(t, models.Quantity(2), events[1].Items[0].Qty)
}

func TestAddVariantsAreSeparateLines(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	blue := cabin
	blue.Color = "blue"

	_, err := s.AddToCart(ctx, cabin, 1)
	require.NoError(t, err)
	items, err := s.AddToCart(ctx, blue, 3)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, 4, TotalQuantity(items))
}

func TestAddNonPositiveQuantityLeavesCart(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddToCart(ctx, cabin, 2)
	require.NoError(t, err)

	for _, q := range []int{0, -1} {
		_, err := s.AddToCart(ctx, cabin, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, 2, TotalQuantity(s.GetItems(ctx)))
}

func TestQuantityCap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, q := range []int{math.MaxInt, MaxQuantity + 1} {
		_, err := s.AddToCart(ctx, cabin, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, s.GetItems(ctx))

	_, err := s.AddToCart(ctx, cabin, MaxQuantity)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, cabin, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Increment(ctx, Key(cabin))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	line, ok := s.Line(ctx, Key(cabin))
	require.True(t, ok)
	assert.Equal(t, models.Quantity(MaxQuantity), line.Qty)

	items, err := s.Decrement(ctx, Key(cabin))
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity-1, TotalQuantity(items))
}

func TestMergeOverHugePersistedQuantity(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Set(ctx, SlotName, []byte(`[{"id":"LG-1","size":"S","color":"red","qty":9223372036854775807,"cartKey":"LG-1-S-red"}]`)))
	s := NewStore(slot, SlotName, nil, nil)

	_, err := s.AddToCart(ctx, cabin, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Increment(ctx, Key(cabin))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	items := s.GetItems(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, models.Quantity(math.MaxInt), items[0].Qty)
}

func TestAddOverCorruptedQuantity(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Set(ctx, SlotName, []byte(`[{"id":"LG-1","size":"S","color":"red","qty":"??","cartKey":"LG-1-S-red"}]`)))
	s := NewStore(slot, SlotName, nil, nil)

	items, err := s.AddToCart(ctx, cabin, 2)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.Quantity(2), items[0].Qty)
}

func TestLegacyLineWithoutKeyMatches(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Set(ctx, SlotName, []byte(`[{"id":"LG-1","size":"S","color":"red","qty":1}]`)))
	s := NewStore(slot, SlotName, nil, nil)

	items, err := s.AddToCart(ctx, cabin, 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.Quantity(2), items[0].Qty)
}

func TestIncrementDecrementRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	key := Key(cabin)
	_, err := s.AddToCart(ctx, cabin, 1)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, models.Product{ID: "other"}, 1)
	require.NoError(t, err)

	items, err := s.Increment(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, models.Quantity(2), items[0].Qty)

	items, err = s.Decrement(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, models.Quantity(1), items[0].Qty)

	items, err = s.Decrement(ctx, key)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "other", items[0].ID)

	_, err = s.Decrement(ctx, key)
	assert.ErrorIs(t, err, ErrItemNotInCart)
	_, err = s.Increment(ctx, key)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	items, err = s.Remove(ctx, "other-default-default")
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = s.Remove(ctx, "other-default-default")
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestClearAllNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddToCart(ctx, cabin, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ClearAll(ctx, nil), ErrNotConfirmed)
	assert.ErrorIs(t, s.ClearAll(ctx, func() bool { return false }), ErrNotConfirmed)
	assert.Len(t, s.GetItems(ctx), 1)

	require.NoError(t, s.ClearAll(ctx, func() bool { return true }))
	assert.Empty(t, s.GetItems(ctx))
}

func TestLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddToCart(ctx, cabin, 5)
	require.NoError(t, err)

	line, ok := s.Line(ctx, Key(cabin))
	require.True(t, ok)
	assert.Equal(t, models.Quantity(5), line.Qty)
	_, ok = s.Line(ctx, "nope")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	items := []models.LineItem{
		{Product: models.Product{ID: "a", Price: 1000}, Qty: 3, CartKey: "a"},
		{Product: models.Product{ID: "b", Price: 250}, Qty: 2, CartKey: "b"},
	}

	s := DefaultPricing.Summarize(items)

	assert.Equal(t, 3500.0, s.Subtotal)
	assert.Equal(t, 350.0, s.Discount)
	assert.Equal(t, 30.0, s.Shipping)
	assert.Equal(t, 3180.0, s.Total)
	assert.Equal(t, 5, s.TotalQuantity)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, 3000.0, s.Lines[0].LineTotal)
}

func TestSummarizeBelowThresholdAndEmpty(t *testing.T) {
	at := DefaultPricing.Summarize([]models.LineItem{{Product: models.Product{Price: 3000}, Qty: 1}})
	assert.Equal(t, 0.0, at.Discount)
	assert.Equal(t, 3030.0, at.Total)

	cents := DefaultPricing.Summarize([]models.LineItem{{Product: models.Product{Price: 19.99}, Qty: 3}})
	assert.Equal(t, 59.97, cents.Subtotal)
	assert.Equal(t, 89.97, cents.Total)

	empty := DefaultPricing.Summarize(nil)
	assert.Zero(t, empty.Subtotal)
	assert.Zero(t, empty.Shipping)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Lines)
}
