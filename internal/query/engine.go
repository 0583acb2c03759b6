package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/01moynul/taptosell-storefront/internal/models"
	"golang.org/x/text/cases"
)

// Result is one computed catalog page.
type Result struct {
	Items      []models.Product `json:"items"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
	// Page is the requested page after clamping.
	Page int `json:"page"`
	// Start and End are the 1-based positions shown on this page, 0 when
	// nothing matched.
	Start int `json:"start"`
	End   int `json:"end"`
}

// ComputeResults filters, sorts and pages all. It never modifies all and
// has no side effects. An empty result has TotalPages 0 and Page 1.
func ComputeResults(all []models.Product, f Filters, pageSize int) Result {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	matched := make([]models.Product, 0, len(all))
	search := fold(strings.TrimSpace(f.Search))
	sizes := ParseSizeFilter(f.Size)

	for _, p := range all {
		if search != "" && !strings.Contains(fold(p.Name), search) && !strings.Contains(fold(p.ID), search) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Color != "" && p.Color != f.Color {
			continue
		}
		if len(sizes) > 0 && !slices.Contains(sizes, p.Size) {
			continue
		}
		if f.SalesOnly && !p.SalesStatus {
			continue
		}
		matched = append(matched, p)
	}

	sortProducts(matched, f.SortBy)

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	page := f.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		page = 1
	}

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	res := Result{
		Items:      matched[start:end:end],
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
	}
	if end > start {
		res.Start = start + 1
		res.End = end
	}
	return res
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// sortProducts orders in place. Unknown keys keep input order, as does every
// tie, since the sort is stable.
func sortProducts(products []models.Product, sortBy string) {
	var less func(a, b models.Product) int
	switch sortBy {
	case SortPriceAsc:
		less = func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		less = func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortPopular:
		less = func(a, b models.Product) int { return cmp.Compare(b.Popularity, a.Popularity) }
	case SortRating:
		less = func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	default:
		return
	}
	slices.SortStableFunc(products, less)
}
