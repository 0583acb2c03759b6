package catalog

import (
	"sort"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/gosimple/slug"
)

// Facets summarizes the filter options present in the loaded catalog.
func (c *Catalog) Facets() models.FilterMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	meta := models.FilterMetadata{
		Categories: []models.FacetValue{},
		Colors:     []models.FacetValue{},
		Sizes:      []models.FacetValue{},
	}
	categories := map[string]int{}
	colors := map[string]int{}
	sizes := map[string]int{}

	for i, p := range c.products {
		count(categories, p.Category)
		count(colors, p.Color)
		count(sizes, p.Size)
		if p.SalesStatus {
			meta.OnSale++
		}
		if i == 0 {
			meta.PriceRange = &models.PriceRangeData{Min: p.Price, Max: p.Price}
			continue
		}
		meta.PriceRange.Min = min(meta.PriceRange.Min, p.Price)
		meta.PriceRange.Max = max(meta.PriceRange.Max, p.Price)
	}

	meta.Categories = facetValues(categories)
	meta.Colors = facetValues(colors)
	meta.Sizes = facetValues(sizes)
	return meta
}

func count(m map[string]int, v string) {
	if v != "" {
		m[v]++
	}
}

func facetValues(m map[string]int) []models.FacetValue {
	out := make([]models.FacetValue, 0, len(m))
	for v, n := range m {
		out = append(out, models.FacetValue{Value: v, Slug: slug.Make(v), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
