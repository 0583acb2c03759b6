package cart

import (
	"context"
	"errors"
	"slices"

	"github.com/01moynul/taptosell-storefront/internal/models"
)

// MaxQuantity caps the quantity of a single line.
const MaxQuantity = 9999

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 9999")
	ErrItemNotInCart   = errors.New("item not in cart")
	ErrNotConfirmed    = errors.New("clearing the cart was not confirmed")
)

// Key is the identity a line item is merged on: the product id plus the
// selected size and color, "default" when unset. Every add, merge, remove
// and lookup goes through it.
func Key(p models.Product) string {
	size := p.Size
	if size == "" {
		size = "default"
	}
	color := p.Color
	if color == "" {
		color = "default"
	}
	return p.ID + "-" + size + "-" + color
}

// AddToCart merges quantity of product into the cart: an existing line with
// the same key has its qty increased, otherwise a new line is appended.
// A quantity outside 1..MaxQuantity, or a merge that would take the line
// past MaxQuantity, is rejected and the cart is left unchanged.
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) ([]models.LineItem, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	key := Key(product)
	return s.update(ctx, func(items []models.LineItem) ([]models.LineItem, error) {
		if i := indexOf(items, key); i >= 0 {
			existing := max(int(items[i].Qty), 0)
			if existing > MaxQuantity-quantity {
				return nil, ErrInvalidQuantity
			}
			items[i].Qty = models.Quantity(existing + quantity)
			return items, nil
		}
		line := models.LineItem{Product: product, Qty: models.Quantity(quantity), CartKey: key}
		line.Blocks = slices.Clone(product.Blocks)
		return append(items, line), nil
	})
}

// Increment adds one to the line with key. A line already at MaxQuantity
// is left alone and ErrInvalidQuantity returned.
func (s *Store) Increment(ctx context.Context, key string) ([]models.LineItem, error) {
	return s.adjust(ctx, key, 1)
}

// Decrement takes one from the line with key, removing the line when it
// reaches zero.
func (s *Store) Decrement(ctx context.Context, key string) ([]models.LineItem, error) {
	return s.adjust(ctx, key, -1)
}

func (s *Store) adjust(ctx context.Context, key string, delta int) ([]models.LineItem, error) {
	return s.update(ctx, func(items []models.LineItem) ([]models.LineItem, error) {
		i := indexOf(items, key)
		if i < 0 {
			return nil, ErrItemNotInCart
		}
		existing := max(int(items[i].Qty), 0)
		if delta > 0 && existing > MaxQuantity-delta {
			return nil, ErrInvalidQuantity
		}
		qty := existing + delta
		if qty <= 0 {
			return slices.Delete(items, i, i+1), nil
		}
		items[i].Qty = models.Quantity(qty)
		return items, nil
	})
}

// Remove drops the line with key.
func (s *Store) Remove(ctx context.Context, key string) ([]models.LineItem, error) {
	return s.update(ctx, func(items []models.LineItem) ([]models.LineItem, error) {
		i := indexOf(items, key)
		if i < 0 {
			return nil, ErrItemNotInCart
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// ClearAll empties the cart once confirm agrees.
func (s *Store) ClearAll(ctx context.Context, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	s.Clear(ctx)
	return nil
}

// Line returns the line with key.
func (s *Store) Line(ctx context.Context, key string) (models.LineItem, bool) {
	items := s.GetItems(ctx)
	if i := indexOf(items, key); i >= 0 {
		return items[i], true
	}
	return models.LineItem{}, false
}

// TotalQuantity is the sum of all line quantities; corrupted values count
// as zero.
func TotalQuantity(items []models.LineItem) int {
	total := 0
	for _, it := range items {
		total += max(int(it.Qty), 0)
	}
	return total
}

// indexOf matches on the stored key. Lines persisted without one fall back
// to the key derived from their product fields.
func indexOf(items []models.LineItem, key string) int {
	return slices.IndexFunc(items, func(it models.LineItem) bool {
		k := it.CartKey
		if k == "" {
			k = Key(it.Product)
		}
		return k == key
	})
}
