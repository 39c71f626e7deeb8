package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

var ErrMissingHeader = errors.New("catalog csv has no header row")

// csvRow mirrors the sheet columns by header name; column order in the file
// does not matter and unknown columns are ignored.
type csvRow struct {
	Name                 string `csv:"Name"`
	Category             string `csv:"Category"`
	Code                 string `csv:"Code"`
	Price                string `csv:"Price"`
	DiscountedPrice      string `csv:"Discounted Price"`
	Details              string `csv:"Details"`
	Size                 string `csv:"Size"`
	Color                string `csv:"Color"`
	Brand                string `csv:"Brand"`
	Tag                  string `csv:"Tag"`
	Stock                string `csv:"Stock"`
	Availability         string `csv:"Availability"`
	Thumbnail            string `csv:"Thumbnail"`
	Image1               string `csv:"Image1"`
	Image2               string `csv:"Image2"`
	Image3               string `csv:"Image3"`
	MinimumOrderQuantity string `csv:"Minimum Order Quantity"`
}

// ParseProducts converts catalog CSV text into products. IDs are assigned as
// "product-N" where N counts non-blank data rows from 1.
func ParseProducts(text string) ([]domain.Product, error) {
	var rows []*csvRow
	if err := gocsv.UnmarshalCSV(newLineReader(text), &rows); err != nil {
		if errors.Is(err, ErrMissingHeader) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse catalog csv: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		products = append(products, row.toProduct(i+1))
	}
	return products, nil
}

func (r *csvRow) toProduct(n int) domain.Product {
	moq := parseCount(r.MinimumOrderQuantity)
	if moq < 1 {
		moq = 1
	}
	return domain.Product{
		ID:                   "product-" + strconv.Itoa(n),
		Name:                 r.Name,
		Category:             r.Category,
		Code:                 r.Code,
		Price:                parseAmount(r.Price),
		DiscountedPrice:      parseAmount(r.DiscountedPrice),
		Details:              r.Details,
		Size:                 r.Size,
		Color:                r.Color,
		Brand:                r.Brand,
		Tag:                  r.Tag,
		Stock:                parseCount(r.Stock),
		Availability:         r.Availability,
		Thumbnail:            r.Thumbnail,
		Image1:               r.Image1,
		Image2:               r.Image2,
		Image3:               r.Image3,
		MinimumOrderQuantity: moq,
	}
}

// parseAmount yields zero for blank, malformed or negative cells.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseCount accepts "12" and truncates "12.5"; anything else is zero.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	return int(d.IntPart())
}
