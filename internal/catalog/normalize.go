package catalog

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/01moynul/taptosell-storefront/internal/models"
	json "github.com/goccy/go-json"
)

// sourceProduct is the on-disk shape. Ids arrive as strings or numbers, and
// older data files use title/image instead of name/imageUrl.
type sourceProduct struct {
	models.Product
	ID    json.RawMessage `json:"id"`
	Title string          `json:"title"`
	Image string          `json:"image"`
}

func normalize(entries []json.RawMessage) []models.Product {
	products := make([]models.Product, 0, len(entries))
	for i, raw := range entries {
		var src sourceProduct
		if err := json.Unmarshal(raw, &src); err != nil {
			// Non-object entries keep their position with a synthesized id.
			src = sourceProduct{}
		}
		p := src.Product
		p.ID = idString(src.ID)
		if p.ID == "" {
			p.ID = fmt.Sprintf("auto-%d", i)
		}
		if p.Name == "" {
			p.Name = src.Title
		}
		if p.ImageURL == "" {
			p.ImageURL = src.Image
		}
		products = append(products, p)
	}
	return products
}

func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}

// buildIndex assigns every product a unique RenderID. The first product with
// a given id keeps it bare; later ones get -1, -2, ... appended.
func buildIndex(products []models.Product) map[string]models.Product {
	index := make(map[string]models.Product, len(products))
	counts := make(map[string]int, len(products))
	for i := range products {
		id := products[i].ID
		key := id
		if _, dup := counts[id]; dup {
			for {
				counts[id]++
				key = fmt.Sprintf("%s-%d", id, counts[id])
				if _, taken := index[key]; !taken {
					break
				}
			}
		} else {
			counts[id] = 0
			if _, taken := index[key]; taken {
				// An earlier duplicate already claimed this suffixed form.
				for n := 1; ; n++ {
					key = fmt.Sprintf("%s-%d", id, n)
					if _, taken := index[key]; !taken {
						break
					}
				}
			}
		}
		products[i].RenderID = key
		index[key] = products[i]
	}
	return index
}
