package coupon

import (
	"sort"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to cents. Amounts here are never negative,
// so this is round half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func sumDecimals(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// allocate splits total across lines in proportion to weights. Every share is
// rounded to cents and capped at caps[i]; the rounding remainder goes to the
// heaviest lines first so the shares add up to total exactly.
func allocate(total decimal.Decimal, weights, caps []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	sumW := sumDecimals(weights)
	if !total.IsPositive() || !sumW.IsPositive() {
		return shares
	}

	for i, w := range weights {
		if !w.IsPositive() {
			continue
		}
		share := RoundMoney(total.Mul(w).Div(sumW))
		shares[i] = minDecimal(share, caps[i])
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]].GreaterThan(weights[order[b]])
	})

	diff := total.Sub(sumDecimals(shares))
	for _, i := range order {
		if diff.IsZero() {
			break
		}
		if diff.IsPositive() {
			room := caps[i].Sub(shares[i])
			if !room.IsPositive() {
				continue
			}
			step := minDecimal(diff, room)
			shares[i] = shares[i].Add(step)
			diff = diff.Sub(step)
		} else {
			if !shares[i].IsPositive() {
				continue
			}
			step := minDecimal(diff.Neg(), shares[i])
			shares[i] = shares[i].Sub(step)
			diff = diff.Add(step)
		}
	}
	return shares
}

func sortStrings(s []string) {
	sort.Strings(s)
}
