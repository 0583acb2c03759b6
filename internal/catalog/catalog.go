package catalog

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog owns the loaded product collection for the life of the process.
// The first successful load is reused by every later call, whatever location
// the caller prefers; Reload and Invalidate force a new fetch.
type Catalog struct {
	loader    *Loader
	preferred string
	log       *zap.Logger
	group     singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	products []models.Product
	index    map[string]models.Product
	source   string

	// loadTimeout bounds one shared load across all candidates.
	loadTimeout time.Duration

	// shuffle is swapped in tests for a deterministic order.
	shuffle func(n int, swap func(i, j int))
}

// DefaultLoadTimeout bounds a load when the loader's client has no timeout.
const DefaultLoadTimeout = 30 * time.Second

// New returns an empty catalog that loads lazily on first use.
func New(loader *Loader, preferred string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		loader:      loader,
		preferred:   preferred,
		log:         log,
		index:       map[string]models.Product{},
		loadTimeout: loadTimeout(loader),
		shuffle:     rand.Shuffle,
	}
}

// loadTimeout allows the preferred location and every candidate their full
// client timeout.
func loadTimeout(l *Loader) time.Duration {
	if l == nil || l.Client == nil || l.Client.Timeout <= 0 {
		return DefaultLoadTimeout
	}
	return l.Client.Timeout * time.Duration(len(l.Candidates)+1)
}

// Products returns the cached collection, loading it with the configured
// preferred location if needed.
func (c *Catalog) Products(ctx context.Context) ([]models.Product, error) {
	return c.Load(ctx, c.preferred)
}

// Load returns the cached collection when present. Otherwise it tries url
// first and then the loader's candidates. A failed load is not cached, so a
// later call tries again.
func (c *Catalog) Load(ctx context.Context, url string) ([]models.Product, error) {
	c.mu.RLock()
	if c.loaded {
		products := c.products
		c.mu.RUnlock()
		return products, nil
	}
	c.mu.RUnlock()
	return c.fetch(ctx, url)
}

// Reload drops the cache and fetches again.
func (c *Catalog) Reload(ctx context.Context) ([]models.Product, error) {
	c.Invalidate()
	return c.fetch(ctx, c.preferred)
}

// Invalidate drops the cached collection.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.products = nil
	c.index = map[string]models.Product{}
	c.source = ""
}

// fetch runs one shared load. The load is detached from the caller's
// cancellation so a client going away does not fail the other waiters; it is
// bounded by loadTimeout instead. Each caller still stops waiting when its
// own ctx is done.
func (c *Catalog) fetch(ctx context.Context, url string) ([]models.Product, error) {
	ch := c.group.DoChan("load", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		res, err := c.loader.Load(loadCtx, url)
		if err != nil {
			return res.Products, err
		}
		c.mu.Lock()
		c.loaded = true
		c.products = res.Products
		c.index = res.Index
		c.source = res.Source
		c.mu.Unlock()
		return res.Products, nil
	})

	select {
	case <-ctx.Done():
		return []models.Product{}, ctx.Err()
	case r := <-ch:
		products, _ := r.Val.([]models.Product)
		if products == nil {
			products = []models.Product{}
		}
		return products, r.Err
	}
}

// Source is the location the cached collection came from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Lookup finds a product by its render id.
func (c *Catalog) Lookup(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.index[id]
	return p, ok
}

// ExactMatch returns the product whose id equals the query, ignoring case
// and surrounding space.
func (c *Catalog) ExactMatch(query string) (models.Product, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.Product{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if strings.EqualFold(p.ID, q) {
			return p, true
		}
	}
	return models.Product{}, false
}

// Block lists up to limit products assigned to a display block, in catalog
// order. limit <= 0 means no limit.
func (c *Catalog) Block(name string, limit int) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Product{}
	for _, p := range c.products {
		if !p.InBlock(name) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Related picks n random products other than id.
func (c *Catalog) Related(id string, n int) []models.Product {
	return c.sample(n, func(p models.Product) bool { return p.ID != id })
}

// TopSets picks n random products of the given category.
func (c *Catalog) TopSets(category string, n int) []models.Product {
	return c.sample(n, func(p models.Product) bool { return p.Category == category })
}

func (c *Catalog) sample(n int, keep func(models.Product) bool) []models.Product {
	c.mu.RLock()
	pool := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			pool = append(pool, p)
		}
	}
	c.mu.RUnlock()

	c.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n >= 0 && n < len(pool) {
		pool = slices.Clip(pool[:n])
	}
	return pool
}
