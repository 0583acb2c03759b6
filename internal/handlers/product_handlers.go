package handlers

import (
	"net/http"
	"strings"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/01moynul/taptosell-storefront/internal/query"
	"github.com/gin-gonic/gin"
)

const (
	// TopSetsCategory feeds the "top sets" carousel.
	TopSetsCategory = "luggage sets"
	homeBlockSize   = 4
	relatedCount    = 4
	topSetsCount    = 4
)

const msgProductNotFound = "Product not found."

// loadProducts returns the catalog, loading it on first use. An unavailable
// catalog is an empty one; the loader has already logged why.
func (h *Handlers) loadProducts(c *gin.Context) []models.Product {
	products, _ := h.Catalog.Products(c.Request.Context())
	return products
}

// ListProducts filters, sorts and pages the catalog from the query string.
func (h *Handlers) ListProducts(c *gin.Context) {
	all := h.loadProducts(c)
	filters := query.ParseFilters(c.Request.URL.Query())
	res := query.ComputeResults(all, filters, h.PageSize)
	filters.Page = res.Page

	resp := gin.H{
		"products": res.Items,
		"filters":  filters,
		"pagination": models.Pagination{
			Page:       res.Page,
			Limit:      h.pageSize(),
			Total:      res.TotalCount,
			TotalPages: res.TotalPages,
			Start:      res.Start,
			End:        res.End,
		},
	}
	if res.TotalCount == 0 {
		resp["message"] = msgProductNotFound
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) pageSize() int {
	if h.PageSize < 1 {
		return query.DefaultPageSize
	}
	return h.PageSize
}

// GetProduct serves /products/:id and the legacy /product?id= form.
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product id is required"})
		return
	}

	h.loadProducts(c)
	product, ok := h.Catalog.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"related": h.Catalog.Related(product.ID, relatedCount),
	})
}

// MatchProduct jumps straight to a product when the search text is its id.
func (h *Handlers) MatchProduct(c *gin.Context) {
	h.loadProducts(c)
	product, ok := h.Catalog.ExactMatch(c.Query("q"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetHome returns the two homepage product blocks.
func (h *Handlers) GetHome(c *gin.Context) {
	h.loadProducts(c)
	c.JSON(http.StatusOK, gin.H{
		"selected":    h.Catalog.Block(models.BlockSelected, homeBlockSize),
		"newArrivals": h.Catalog.Block(models.BlockNewArrivals, homeBlockSize),
	})
}

func (h *Handlers) GetTopSets(c *gin.Context) {
	h.loadProducts(c)
	c.JSON(http.StatusOK, gin.H{"products": h.Catalog.TopSets(TopSetsCategory, topSetsCount)})
}

// GetFacets lists the values every catalog filter can take.
func (h *Handlers) GetFacets(c *gin.Context) {
	h.loadProducts(c)
	c.JSON(http.StatusOK, h.Catalog.Facets())
}

// ReloadCatalog drops the cached catalog and fetches it again.
func (h *Handlers) ReloadCatalog(c *gin.Context) {
	products, err := h.Catalog.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reload product data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog reloaded",
		"count":   len(products),
		"source":  h.Catalog.Source(),
	})
}
