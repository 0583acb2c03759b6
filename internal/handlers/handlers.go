package handlers

import (
	"github.com/01moynul/taptosell-storefront/internal/auth"
	"github.com/01moynul/taptosell-storefront/internal/cart"
	"github.com/01moynul/taptosell-storefront/internal/catalog"
	"go.uber.org/zap"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Catalog  *catalog.Catalog
	Carts    *cart.Registry
	Sessions *auth.Sessions
	Pricing  cart.Pricing
	PageSize int
	Log      *zap.Logger
}
