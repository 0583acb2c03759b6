package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort keys accepted by the catalog listing.
const (
	SortDefault   = "default"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortPopular   = "popularity"
	SortRating    = "rating"
)

// DefaultPageSize is the catalog grid size.
const DefaultPageSize = 12

// Filters is the flat filter state of the catalog view. Changing any filter
// through a With* method sends the view back to page 1.
type Filters struct {
	Category  string `json:"category"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	SalesOnly bool   `json:"salesOnly"`
	Search    string `json:"search"`
	SortBy    string `json:"sortBy"`
	Page      int    `json:"page"`
}

// DefaultFilters is the state after "clear filters".
func DefaultFilters() Filters {
	return Filters{SortBy: SortDefault, Page: 1}
}

func (f Filters) WithCategory(v string) Filters { f.Category = v; f.Page = 1; return f }
func (f Filters) WithColor(v string) Filters    { f.Color = v; f.Page = 1; return f }
func (f Filters) WithSize(v string) Filters     { f.Size = v; f.Page = 1; return f }
func (f Filters) WithSalesOnly(v bool) Filters  { f.SalesOnly = v; f.Page = 1; return f }
func (f Filters) WithSearch(v string) Filters   { f.Search = v; f.Page = 1; return f }
func (f Filters) WithSort(v string) Filters     { f.SortBy = v; f.Page = 1; return f }

// WithPage moves to another page without touching the filters.
func (f Filters) WithPage(p int) Filters { f.Page = p; return f }

// Clear resets every filter to its default.
func (f Filters) Clear() Filters { return DefaultFilters() }

// ParseFilters reads the filter state from query parameters:
// category, color, size, sale (true/1), q, sortBy, page.
func ParseFilters(v url.Values) Filters {
	f := DefaultFilters()
	f.Category = strings.TrimSpace(v.Get("category"))
	f.Color = strings.TrimSpace(v.Get("color"))
	f.Size = strings.TrimSpace(v.Get("size"))
	f.Search = v.Get("q")
	if sale, err := strconv.ParseBool(v.Get("sale")); err == nil {
		f.SalesOnly = sale
	}
	if s := strings.TrimSpace(v.Get("sortBy")); s != "" {
		f.SortBy = s
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	return f
}
