package domain

import (
	"errors"
	"fmt"
	"math"

	catalog "github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// SessionHeader carries the cart session id on API requests.
const SessionHeader = "X-Cart-Session"

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrQuantityTooLarge   = errors.New("quantity exceeds the largest cart quantity")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available stock")
	ErrUnknownStockPolicy = errors.New("unknown stock policy")
)

// StockPolicy decides what happens when a cart quantity would exceed product stock.
type StockPolicy string

const (
	// StockAllow never checks stock.
	StockAllow StockPolicy = "allow"
	// StockClamp caps the quantity at the available stock.
	StockClamp StockPolicy = "clamp"
	// StockReject refuses the mutation.
	StockReject StockPolicy = "reject"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(s); p {
	case StockAllow, StockClamp, StockReject:
		return p, nil
	case "":
		return StockAllow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStockPolicy, s)
	}
}

type Entry struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal is DiscountedPrice x Quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return e.Product.DiscountedPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Snapshot is an immutable view of a cart after a completed mutation.
type Snapshot struct {
	Version    uint64          `json:"version"`
	Entries    []Entry         `json:"entries"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewSnapshot copies entries and derives the totals from them.
func NewSnapshot(version uint64, entries []Entry) Snapshot {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return Snapshot{
		Version:    version,
		Entries:    copied,
		TotalItems: TotalItems(copied),
		TotalPrice: TotalPrice(copied),
	}
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Entries) == 0
}

// TotalItems sums entry quantities, saturating at math.MaxInt.
func TotalItems(entries []Entry) int {
	total := 0
	for _, e := range entries {
		if e.Quantity > math.MaxInt-total {
			return math.MaxInt
		}
		total += e.Quantity
	}
	return total
}

func TotalPrice(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}
