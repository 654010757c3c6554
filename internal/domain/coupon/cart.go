package coupon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart        = errors.New("cart has no items")
	ErrInvalidCartItem  = errors.New("invalid cart item")
	ErrCartTooManyLines = errors.New("cart has too many lines")
)

const (
	MaxCartLines = 500
	// MaxLineQuantity keeps unit arithmetic (bogo grouping, line totals) far from int overflow.
	MaxLineQuantity = 1_000_000
)

// Item is a priced cart line as received from the cart subsystem.
type Item struct {
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Line is an Item enriched with the categories its SKU belongs to.
type Line struct {
	Item
	Categories []string
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []Line
}

// ParseItems rejects malformed input before any coupon logic runs.
func ParseItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if len(items) > MaxCartLines {
		return nil, ErrCartTooManyLines
	}
	out := make([]Item, 0, len(items))
	for i, it := range items {
		sku := strings.TrimSpace(it.SKU)
		switch {
		case sku == "":
			return nil, fmt.Errorf("%w: line %d: sku is required", ErrInvalidCartItem, i)
		case it.Quantity <= 0:
			return nil, fmt.Errorf("%w: line %d: quantity must be positive", ErrInvalidCartItem, i)
		case it.Quantity > MaxLineQuantity:
			return nil, fmt.Errorf("%w: line %d: quantity must not exceed %d", ErrInvalidCartItem, i, MaxLineQuantity)
		case it.UnitPrice.IsNegative():
			return nil, fmt.Errorf("%w: line %d: unit price must not be negative", ErrInvalidCartItem, i)
		case !it.UnitPrice.Equal(RoundMoney(it.UnitPrice)):
			return nil, fmt.Errorf("%w: line %d: unit price must have at most 2 decimal places", ErrInvalidCartItem, i)
		}
		out = append(out, Item{SKU: sku, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out, nil
}

// NewCart attaches categories (sku -> category ids) to already parsed items.
func NewCart(items []Item, categories map[string][]string) Cart {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{Item: it, Categories: categories[it.SKU]}
	}
	return Cart{Lines: lines}
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// SKUs returns the distinct SKUs in line order.
func (c Cart) SKUs() []string {
	seen := make(map[string]struct{}, len(c.Lines))
	out := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		if _, ok := seen[l.SKU]; ok {
			continue
		}
		seen[l.SKU] = struct{}{}
		out = append(out, l.SKU)
	}
	return out
}
