package service

import (
	"strings"

	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// Filter narrows a product list. Zero values disable a criterion; the
// criteria are ANDed, values inside Categories and Brands are ORed.
type Filter struct {
	Search     string
	Categories []string
	Brands     []string
	Tag        string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Facets describe the whole catalog so a client can build filter controls.
type Facets struct {
	Categories []string        `json:"categories"`
	Brands     []string        `json:"brands"`
	MinPrice   decimal.Decimal `json:"min_price"`
	MaxPrice   decimal.Decimal `json:"max_price"`
}

type FilterResult struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Facets   Facets           `json:"facets"`
}

// Apply returns the matching products in catalog order. The input slice is not modified.
func (f Filter) Apply(products []domain.Product) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
			continue
		}
		if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
			continue
		}
		if f.Tag != "" && p.Tag != f.Tag {
			continue
		}
		if f.MinPrice != nil && p.DiscountedPrice.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.DiscountedPrice.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p domain.Product, query string) bool {
	for _, field := range []string{p.Name, p.Details, p.Brand, p.Category} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// BuildFacets collects distinct non-empty categories and brands in first-seen
// order, and the floor/ceil of positive discounted prices.
func BuildFacets(products []domain.Product) Facets {
	facets := Facets{Categories: []string{}, Brands: []string{}}
	seenCat := map[string]bool{}
	seenBrand := map[string]bool{}
	first := true

	for _, p := range products {
		if p.Category != "" && !seenCat[p.Category] {
			seenCat[p.Category] = true
			facets.Categories = append(facets.Categories, p.Category)
		}
		if p.Brand != "" && !seenBrand[p.Brand] {
			seenBrand[p.Brand] = true
			facets.Brands = append(facets.Brands, p.Brand)
		}
		if !p.DiscountedPrice.IsPositive() {
			continue
		}
		if first {
			facets.MinPrice, facets.MaxPrice = p.DiscountedPrice, p.DiscountedPrice
			first = false
			continue
		}
		facets.MinPrice = decimal.Min(facets.MinPrice, p.DiscountedPrice)
		facets.MaxPrice = decimal.Max(facets.MaxPrice, p.DiscountedPrice)
	}
	facets.MinPrice = facets.MinPrice.Floor()
	facets.MaxPrice = facets.MaxPrice.Ceil()
	return facets
}
