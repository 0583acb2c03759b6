package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleData = `{"data":[
	{"id":"LG-1","name":"Cabin Case","price":120,"category":"suitcases","color":"red","size":"S","blocks":["Selected Products"]},
	{"id":"LG-2","name":"Family Set","price":450,"category":"luggage sets","color":"black","size":"L","salesStatus":true,"blocks":["Selected Products","New Products Arrival"]},
	{"id":"LG-3","name":"Duo Set","price":300,"category":"luggage sets","color":"black","size":"M"},
	{"id":"LG-1","name":"Cabin Case Blue","price":125,"category":"suitcases","color":"blue","size":"S","blocks":["New Products Arrival"]}
]}`

func newTestCatalog(t *testing.T, files fstest.MapFS) *Catalog {
	t.Helper()
	log := zaptest.NewLogger(t)
	l, err := NewLoader([]string{"/src/assets/data.json"}, "", files, nil, log)
	require.NoError(t, err)
	c := New(l, "/data.json", log)
	c.shuffle = func(n int, swap func(i, j int)) {}
	return c
}

func TestCatalogCachesFirstLoad(t *testing.T) {
	files := fstest.MapFS{"src/assets/data.json": {Data: []byte(sampleData)}}
	c := newTestCatalog(t, files)

	first, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Equal(t, "/src/assets/data.json", c.Source())

	// A different preferred location still gets the cached collection.
	files["other.json"] = &fstest.MapFile{Data: []byte(`[{"id":"z"}]`)}
	again, err := c.Load(context.Background(), "other.json")
	require.NoError(t, err)
	assert.Len(t, again, 4)

	delete(files, "src/assets/data.json")
	files["data.json"] = &fstest.MapFile{Data: []byte(`[{"id":"z"}]`)}
	reloaded, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, reloaded, 1)
}

func TestCatalogFailureIsNotCached(t *testing.T) {
	files := fstest.MapFS{}
	c := newTestCatalog(t, files)

	products, err := c.Products(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidateSucceeded)
	assert.Empty(t, products)

	files["data.json"] = &fstest.MapFile{Data: []byte(sampleData)}
	products, err = c.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestCatalogLookups(t *testing.T) {
	c := newTestCatalog(t, fstest.MapFS{"data.json": {Data: []byte(sampleData)}})
	_, err := c.Products(context.Background())
	require.NoError(t, err)

	p, ok := c.Lookup("LG-1")
	require.True(t, ok)
	assert.Equal(t, "Cabin Case", p.Name)

	dup, ok := c.Lookup("LG-1-1")
	require.True(t, ok)
	assert.Equal(t, "Cabin Case Blue", dup.Name)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)

	m, ok := c.ExactMatch("  lg-3 ")
	require.True(t, ok)
	assert.Equal(t, "Duo Set", m.Name)
	_, ok = c.ExactMatch("LG")
	assert.False(t, ok)
}

func TestCatalogSections(t *testing.T) {
	c := newTestCatalog(t, fstest.MapFS{"data.json": {Data: []byte(sampleData)}})
	_, err := c.Products(context.Background())
	require.NoError(t, err)

	selected := c.Block("Selected Products", 4)
	require.Len(t, selected, 2)
	assert.Equal(t, "LG-1", selected[0].ID)

	arrivals := c.Block("New Products Arrival", 1)
	require.Len(t, arrivals, 1)
	assert.Equal(t, "LG-2", arrivals[0].ID)

	related := c.Related("LG-1", 4)
	require.Len(t, related, 2)
	for _, p := range related {
		assert.NotEqual(t, "LG-1", p.ID)
	}

	sets := c.TopSets("luggage sets", 1)
	require.Len(t, sets, 1)
	assert.Equal(t, "luggage sets", sets[0].Category)
}

func TestFacets(t *testing.T) {
	c := newTestCatalog(t, fstest.MapFS{"data.json": {Data: []byte(sampleData)}})
	_, err := c.Products(context.Background())
	require.NoError(t, err)

	meta := c.Facets()

	require.Len(t, meta.Categories, 2)
	assert.Equal(t, "luggage sets", meta.Categories[0].Value)
	assert.Equal(t, "luggage-sets", meta.Categories[0].Slug)
	assert.Equal(t, 2, meta.Categories[0].Count)
	assert.Len(t, meta.Colors, 3)
	assert.Len(t, meta.Sizes, 3)
	assert.Equal(t, 1, meta.OnSale)
	require.NotNil(t, meta.PriceRange)
	assert.Equal(t, 120.0, meta.PriceRange.Min)
	assert.Equal(t, 450.0, meta.PriceRange.Max)
}

func TestFacetsEmptyCatalog(t *testing.T) {
	c := newTestCatalog(t, fstest.MapFS{})
	meta := c.Facets()
	assert.Empty(t, meta.Categories)
	assert.Nil(t, meta.PriceRange)
}

func TestCatalogLoadSurvivesCallerCancel(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.Write([]byte(sampleData))
	}))
	defer srv.Close()

	log := zaptest.NewLogger(t)
	l, err := NewLoader(nil, "", nil, nil, log)
	require.NoError(t, err)
	c := New(l, srv.URL+"/data.json", log)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Products(ctx)
		first <- err
	}()
	<-started

	second := make(chan []models.Product, 1)
	go func() {
		products, _ := c.Products(context.Background())
		second <- products
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.Len(t, <-second, 4)
	assert.Equal(t, srv.URL+"/data.json", c.Source())
}

func TestCatalogLoadIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	log := zaptest.NewLogger(t)
	l, err := NewLoader(nil, "", nil, nil, log)
	require.NoError(t, err)
	c := New(l, srv.URL+"/data.json", log)
	c.loadTimeout = 50 * time.Millisecond

	start := time.Now()
	products, err := c.Products(context.Background())

	assert.Error(t, err)
	assert.Empty(t, products)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLoadTimeoutCoversEveryCandidate(t *testing.T) {
	l, err := NewLoader([]string{"/a.json", "/b.json"}, "", nil, &http.Client{Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, New(l, "", nil).loadTimeout)

	l.Client = &http.Client{}
	assert.Equal(t, DefaultLoadTimeout, New(l, "", nil).loadTimeout)
}
