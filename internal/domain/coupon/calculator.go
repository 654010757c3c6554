package coupon

import (
	"sort"

	"github.com/shopspring/decimal"
)

type LineDiscount struct {
	SKU            string
	Quantity       int // units discounted; for bogo, the free units on this line
	DiscountAmount decimal.Decimal
}

type DiscountResult struct {
	Code            Code
	Type            DiscountType
	DiscountAmount  decimal.Decimal
	NewSubtotal     decimal.Decimal
	DiscountedItems []LineDiscount
}

// lineShare is one coupon's cut of one cart line before it is reported.
type lineShare struct {
	amount decimal.Decimal
	units  int
}

// Compute runs the calculator for a single coupon against the full cart.
func Compute(c *Coupon, cart Cart) DiscountResult {
	remaining := make([]decimal.Decimal, len(cart.Lines))
	for i, l := range cart.Lines {
		remaining[i] = l.Total()
	}
	return computeOn(c, cart.Lines, remaining)
}

// computeOn computes against what is left of each line after earlier coupons.
func computeOn(c *Coupon, lines []Line, remaining []decimal.Decimal) DiscountResult {
	return report(c, lines, remaining, shareOut(c, lines, remaining))
}

// shareOut is the per-type dispatch; every variant returns one share per line.
func shareOut(c *Coupon, lines []Line, remaining []decimal.Decimal) []lineShare {
	switch c.Type {
	case TypePercentAll:
		return percentAll(c, lines, remaining)
	case TypePercentSpecific:
		return percentSpecific(c, lines, remaining)
	case TypeFixed:
		return fixedAmount(c, lines, remaining)
	case TypeBogo:
		return buyXGetY(c, lines, remaining)
	default:
		return make([]lineShare, len(lines))
	}
}

func report(c *Coupon, lines []Line, remaining []decimal.Decimal, shares []lineShare) DiscountResult {
	res := DiscountResult{
		Code:            c.Code,
		Type:            c.Type,
		DiscountAmount:  decimal.Zero,
		DiscountedItems: []LineDiscount{},
	}
	for i, s := range shares {
		if !s.amount.IsPositive() {
			continue
		}
		res.DiscountAmount = res.DiscountAmount.Add(s.amount)
		res.DiscountedItems = append(res.DiscountedItems, LineDiscount{
			SKU:            lines[i].SKU,
			Quantity:       s.units,
			DiscountAmount: s.amount,
		})
	}
	res.NewSubtotal = sumDecimals(remaining).Sub(res.DiscountAmount)
	return res
}

func percentAll(c *Coupon, lines []Line, remaining []decimal.Decimal) []lineShare {
	base := sumDecimals(remaining)
	total := RoundMoney(minDecimal(base.Mul(c.Value).Div(hundred), base))
	return toShares(allocate(total, remaining, remaining), lineUnits(lines))
}

func percentSpecific(c *Coupon, lines []Line, remaining []decimal.Decimal) []lineShare {
	raw := make([]decimal.Decimal, len(lines))
	matched := decimal.Zero
	for i, l := range lines {
		raw[i] = decimal.Zero
		if c.appliesTo(l) {
			raw[i] = remaining[i].Mul(c.Value).Div(hundred)
			matched = matched.Add(remaining[i])
		}
	}
	total := RoundMoney(minDecimal(sumDecimals(raw), matched))
	return toShares(allocate(total, raw, remaining), lineUnits(lines))
}

func fixedAmount(c *Coupon, lines []Line, remaining []decimal.Decimal) []lineShare {
	weights := make([]decimal.Decimal, len(lines))
	for i, l := range lines {
		weights[i] = decimal.Zero
		if c.appliesTo(l) {
			weights[i] = remaining[i]
		}
	}
	total := RoundMoney(minDecimal(c.Value, sumDecimals(weights)))
	return toShares(allocate(total, weights, remaining), lineUnits(lines))
}

func buyXGetY(c *Coupon, lines []Line, remaining []decimal.Decimal) []lineShare {
	if c.BogoBuyQuantity <= 0 || c.BogoGetQuantity <= 0 {
		return make([]lineShare, len(lines))
	}

	prices := make([]decimal.Decimal, len(lines))
	var matching []int
	available := 0
	for i, l := range lines {
		if !c.appliesTo(l) || l.Quantity <= 0 {
			continue
		}
		prices[i] = remaining[i].Div(decimal.NewFromInt(int64(l.Quantity)))
		matching = append(matching, i)
		available += l.Quantity
	}

	groups := available / (c.BogoBuyQuantity + c.BogoGetQuantity)
	free := groups * c.BogoGetQuantity

	// Cheapest units go free first.
	sort.SliceStable(matching, func(a, b int) bool {
		return prices[matching[a]].LessThan(prices[matching[b]])
	})

	raw := make([]decimal.Decimal, len(lines))
	for i := range raw {
		raw[i] = decimal.Zero
	}
	freeUnits := make([]int, len(lines))
	for _, i := range matching {
		if free == 0 {
			break
		}
		n := min(free, lines[i].Quantity)
		freeUnits[i] = n
		raw[i] = prices[i].Mul(decimal.NewFromInt(int64(n)))
		free -= n
	}

	total := RoundMoney(sumDecimals(raw))
	return toShares(allocate(total, raw, remaining), freeUnits)
}

func toShares(amounts []decimal.Decimal, units []int) []lineShare {
	out := make([]lineShare, len(amounts))
	for i, a := range amounts {
		out[i] = lineShare{amount: a, units: units[i]}
	}
	return out
}

func lineUnits(lines []Line) []int {
	units := make([]int, len(lines))
	for i, l := range lines {
		units[i] = l.Quantity
	}
	return units
}
