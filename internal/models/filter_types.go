package models

// Pagination mirrors the meta block returned with paged listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Start      int `json:"start"`
	End        int `json:"end"`
}

// FacetValue is one selectable filter option.
type FacetValue struct {
	Value string `json:"value"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// PriceRangeData represents the minimum and maximum price in the catalog.
type PriceRangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterMetadata lists every option the catalog filters can take.
type FilterMetadata struct {
	Categories []FacetValue    `json:"categories"`
	Colors     []FacetValue    `json:"colors"`
	Sizes      []FacetValue    `json:"sizes"`
	OnSale     int             `json:"onSale"`
	PriceRange *PriceRangeData `json:"priceRange"`
}
