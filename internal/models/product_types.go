package models

// Product is one catalog entry as published in the storefront data file.
// Products are immutable once the catalog is loaded.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Size        string   `json:"size"`
	SalesStatus bool     `json:"salesStatus"`
	Popularity  float64  `json:"popularity"`
	Rating      float64  `json:"rating"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Blocks      []string `json:"blocks,omitempty"`

	// RenderID is unique across the loaded collection. It only differs from
	// ID when the source data repeats an id; it is never business identity.
	RenderID string `json:"renderId,omitempty"`
}

// InBlock reports whether the product is assigned to the named display block.
func (p Product) InBlock(name string) bool {
	for _, b := range p.Blocks {
		if b == name {
			return true
		}
	}
	return false
}

// Block names used by the homepage sections.
const (
	BlockSelected    = "Selected Products"
	BlockNewArrivals = "New Products Arrival"
)
