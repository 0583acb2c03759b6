package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/taptosell-storefront/internal/auth"
	"github.com/01moynul/taptosell-storefront/internal/cart"
	"github.com/01moynul/taptosell-storefront/internal/catalog"
	"github.com/01moynul/taptosell-storefront/internal/config"
	"github.com/01moynul/taptosell-storefront/internal/database"
	"github.com/01moynul/taptosell-storefront/internal/handlers"
	"github.com/01moynul/taptosell-storefront/internal/routes"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	cfg, loadedEnv := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !loadedEnv {
		logger.Warn("could not find or load .env file, relying on system environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Cart Persistence ---
	slot, closeSlot, err := openSlot(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open cart backend", zap.String("backend", cfg.CartBackend), zap.Error(err))
	}
	defer closeSlot()

	// 2. --- Product Catalog ---
	client := &http.Client{
		Timeout:   cfg.FetchTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	loader, err := catalog.NewLoader(cfg.Candidates, cfg.DataBaseURL, os.DirFS(cfg.DataDir), client, logger.Named("catalog"))
	if err != nil {
		logger.Fatal("failed to create catalog loader", zap.Error(err))
	}
	products := catalog.New(loader, cfg.DataURL, logger.Named("catalog"))

	// Warm the cache; a failure here is retried on first request.
	if _, err := products.Products(ctx); err == nil {
		logger.Info("catalog loaded", zap.String("source", products.Source()))
	}

	// --- Application Setup ---
	registry := cart.NewRegistry(slot, nil, logger.Named("cart"))
	app := &handlers.Handlers{
		Catalog:  products,
		Carts:    registry,
		Sessions: auth.NewSessions(cfg.SessionSecret),
		Pricing: cart.Pricing{
			DiscountThreshold: cfg.DiscountThreshold,
			DiscountPercent:   cfg.DiscountPercent,
			ShippingFee:       cfg.ShippingFee,
		},
		PageSize: cfg.PageSize,
		Log:      logger,
	}

	// --- Router Setup ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigins:   cfg.CORSOrigins,
		CartRateLimit: cfg.CartRateLimit,
		SecureCookies: !cfg.IsDevelopment(),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server and Background Workers ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting storefront API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return registry.Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openSlot builds the configured cart backend. The returned func releases
// its connections.
func openSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cart.Slot, func(), error) {
	noop := func() {}
	switch cfg.CartBackend {
	case "memory":
		return cart.NewMemorySlot(), noop, nil
	case "file":
		slot, err := cart.NewFileSlot(cfg.CartDir)
		return slot, noop, err
	case "redis":
		client, err := cart.ParseRedisURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return cart.NewRedisSlot(client, "storefront:", logger.Named("redis")), func() { client.Close() }, nil
	case "mysql":
		db, err := database.OpenDBWithDSN(ctx, cfg.MySQLDSN, logger)
		if err != nil {
			return nil, noop, err
		}
		slot := cart.NewMySQLSlot(db)
		if err := slot.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("create slots table: %w", err)
		}
		return slot, func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown cart backend %q", cfg.CartBackend)
	}
}
