package service

import (
	"testing"

	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestFilter_Apply(t *testing.T) {
	products := catalogFixture()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no criteria keeps everything", Filter{}, ids(products)},
		{"search is case-insensitive over name", Filter{Search: "  PEN"}, []string{"product-1", "product-4"}},
		{"search matches brand and category", Filter{Search: "office"}, []string{"product-3", "product-5"}},
		{"categories are ORed", Filter{Categories: []string{"Office Supplies", "Nope"}}, []string{"product-3", "product-5"}},
		{"brands", Filter{Brands: []string{"Camlin", "Apsara"}}, []string{"product-4", "product-6", "product-7"}},
		{"tag is exact", Filter{Tag: "Top Seller"}, []string{"product-1", "product-3", "product-6"}},
		{"price range is inclusive", Filter{MinPrice: decimalPtr(8), MaxPrice: decimalPtr(35)}, []string{"product-1", "product-6", "product-7", "product-8"}},
		{"criteria are ANDed", Filter{Categories: []string{"Stationery"}, Tag: "Top Seller", MaxPrice: decimalPtr(10)}, []string{"product-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(products)))
		})
	}
}

func TestFilter_ApplyDoesNotMutateInput(t *testing.T) {
	products := catalogFixture()
	before := ids(products)

	_ = Filter{Tag: "Top Seller"}.Apply(products)

	assert.Equal(t, before, ids(products))
}

func TestBuildFacets(t *testing.T) {
	products := []domain.Product{
		{Category: "A", Brand: "X", DiscountedPrice: decimal.RequireFromString("10.4")},
		{Category: "B", Brand: "", DiscountedPrice: decimal.Zero},
		{Category: "A", Brand: "Y", DiscountedPrice: decimal.RequireFromString("99.2")},
		{Category: "", Brand: "X", DiscountedPrice: decimal.RequireFromString("3.7")},
	}

	f := BuildFacets(products)

	assert.Equal(t, []string{"A", "B"}, f.Categories)
	assert.Equal(t, []string{"X", "Y"}, f.Brands)
	assert.True(t, decimal.NewFromInt(3).Equal(f.MinPrice))
	assert.True(t, decimal.NewFromInt(100).Equal(f.MaxPrice))
}

func TestBuildFacets_Empty(t *testing.T) {
	f := BuildFacets(nil)

	assert.Empty(t, f.Categories)
	assert.Empty(t, f.Brands)
	assert.True(t, f.MinPrice.IsZero())
	assert.True(t, f.MaxPrice.IsZero())
}
