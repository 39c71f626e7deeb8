package domain

import (
	"github.com/shopspring/decimal"
)

// TopSellerTag marks products featured on the home page.
const TopSellerTag = "Top Seller"

// Product is one catalog row. Every field holds a concrete value; missing
// cells are normalised to defaults by the loader.
type Product struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	Code                 string          `json:"code"`
	Price                decimal.Decimal `json:"price"`
	DiscountedPrice      decimal.Decimal `json:"discounted_price"`
	Details              string          `json:"details"`
	Size                 string          `json:"size"`
	Color                string          `json:"color"`
	Brand                string          `json:"brand"`
	Tag                  string          `json:"tag"`
	Stock                int             `json:"stock"`
	Availability         string          `json:"availability"`
	Thumbnail            string          `json:"thumbnail"`
	Image1               string          `json:"image1"`
	Image2               string          `json:"image2"`
	Image3               string          `json:"image3"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity"`
}

// DiscountPercent is the rounded saving of DiscountedPrice over Price, 0 when Price is 0.
func (p Product) DiscountPercent() int {
	if !p.Price.IsPositive() {
		return 0
	}
	pct := p.Price.Sub(p.DiscountedPrice).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// Images returns the non-empty gallery URLs, thumbnail first.
func (p Product) Images() []string {
	out := make([]string, 0, 4)
	for _, u := range []string{p.Thumbnail, p.Image1, p.Image2, p.Image3} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// CategorySummary aggregates the products of one category.
type CategorySummary struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Brands []string `json:"brands"`
}

type ProductDetail struct {
	Product
	DiscountPercent int      `json:"discount_percent"`
	Images          []string `json:"images"`
}
