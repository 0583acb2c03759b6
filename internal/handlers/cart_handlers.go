package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/01moynul/taptosell-storefront/internal/cart"
	"github.com/01moynul/taptosell-storefront/internal/middleware"
	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Cart Handlers (per session) ---
//

// CartEvent is the SSE event name sent on every cart change.
const CartEvent = "cart-updated"

func (h *Handlers) cartStore(c *gin.Context) *cart.Store {
	return h.Carts.Store(middleware.SessionID(c))
}

func cartResponse(items []models.LineItem) gin.H {
	return gin.H{"items": items, "count": cart.TotalQuantity(items)}
}

// cartError maps mutation errors to responses.
func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be between 1 and 9999 per item"})
	case errors.Is(err, cart.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
	case errors.Is(err, cart.ErrNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Clearing the cart must be confirmed with confirm=true"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
	}
}

func (h *Handlers) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartResponse(h.cartStore(c).GetItems(c.Request.Context())))
}

// GetCartCount returns the badge number: the sum of all quantities.
func (h *Handlers) GetCartCount(c *gin.Context) {
	items := h.cartStore(c).GetItems(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"count": cart.TotalQuantity(items)})
}

func (h *Handlers) GetCartSummary(c *gin.Context) {
	items := h.cartStore(c).GetItems(c.Request.Context())
	c.JSON(http.StatusOK, h.Pricing.Summarize(items))
}

// AddToCartInput defines the JSON for adding an item to the cart. A missing
// quantity means one.
type AddToCartInput struct {
	ID       string `json:"id" binding:"required"`
	Quantity *int   `json:"quantity"`
}

func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	h.loadProducts(c)
	product, ok := h.Catalog.Lookup(input.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
		return
	}

	items, err := h.cartStore(c).AddToCart(c.Request.Context(), product, quantity)
	if err != nil {
		cartError(c, err)
		return
	}
	resp := cartResponse(items)
	resp["message"] = "Item added to cart"
	c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) IncrementCartItem(c *gin.Context) {
	items, err := h.cartStore(c).Increment(c.Request.Context(), c.Param("key"))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// DecrementCartItem removes the line when its quantity would reach zero.
func (h *Handlers) DecrementCartItem(c *gin.Context) {
	items, err := h.cartStore(c).Decrement(c.Request.Context(), c.Param("key"))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *Handlers) DeleteCartItem(c *gin.Context) {
	items, err := h.cartStore(c).Remove(c.Request.Context(), c.Param("key"))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// ClearCart empties the cart. The caller confirms with ?confirm=true.
func (h *Handlers) ClearCart(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	err := h.cartStore(c).ClearAll(c.Request.Context(), func() bool { return confirmed })
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "items": []models.LineItem{}, "count": 0})
}

// CartEvents streams the current cart and then every change to it as
// Server-Sent Events until the client goes away.
func (h *Handlers) CartEvents(c *gin.Context) {
	ctx := c.Request.Context()
	store := h.cartStore(c)

	events := make(chan cart.Event, 16)
	unsubscribe := store.Subscribe(func(ev cart.Event) {
		select {
		case events <- ev:
		default:
			h.Log.Warn("dropping cart event for slow subscriber", zap.String("slot", ev.Slot))
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(CartEvent, gin.H{"items": store.GetItems(ctx), "origin": cart.OriginLocal.String()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent(CartEvent, gin.H{"items": ev.Items, "origin": ev.Origin.String()})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
