package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/01moynul/taptosell-storefront/internal/handlers"
	"github.com/01moynul/taptosell-storefront/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options are the router settings that do not belong to a handler.
type Options struct {
	CORSOrigins []string
	// CartRateLimit is the allowed cart mutations per second per client IP.
	CartRateLimit float64
	SecureCookies bool
}

// CORSMiddleware lets the configured frontends call the API with their
// session cookie. "*" allows any origin, without credentials.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders: []string{"X-Session-Token"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.Default()

	// This must be the very first thing the router uses
	router.Use(CORSMiddleware(opts.CORSOrigins))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Catalog Routes (Public) ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/match", h.MatchProduct)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/product", h.GetProduct)
		v1.GET("/home", h.GetHome)
		v1.GET("/catalog/top-sets", h.GetTopSets)
		v1.GET("/catalog/facets", h.GetFacets)
		v1.POST("/catalog/reload", h.ReloadCatalog)

		// --- Cart Routes (Session Required) ---
		cartGroup := v1.Group("/cart")
		cartGroup.Use(middleware.SessionMiddleware(h.Sessions, opts.SecureCookies, h.Log))
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.GET("/count", h.GetCartCount)
			cartGroup.GET("/summary", h.GetCartSummary)
			cartGroup.GET("/events", h.CartEvents)

			mutations := cartGroup.Group("")
			mutations.Use(middleware.RateLimiter(opts.CartRateLimit))
			{
				mutations.POST("/items", h.AddToCart)
				mutations.POST("/items/:key/increment", h.IncrementCartItem)
				mutations.POST("/items/:key/decrement", h.DecrementCartItem)
				mutations.DELETE("/items/:key", h.DeleteCartItem)
				mutations.DELETE("", h.ClearCart)
			}
		}
	}

	return router
}
