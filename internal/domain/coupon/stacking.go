package coupon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CanStack reports whether candidate may join the coupons already on the cart.
// An empty cart accepts anything; otherwise every coupon involved must be stackable.
func CanStack(applied []*Coupon, candidate *Coupon) bool {
	others := 0
	for _, a := range applied {
		if a.Code == candidate.Code {
			continue
		}
		others++
		if !a.Stackable {
			return false
		}
	}
	return others == 0 || candidate.Stackable
}

// StackOrder returns coupons in application order: oldest first. Coupons created
// at the same instant go percent, then fixed, then bogo, then by code.
// The order the caller supplied never matters.
func StackOrder(coupons []*Coupon) []*Coupon {
	out := make([]*Coupon, len(coupons))
	copy(out, coupons)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if ra, rb := a.Type.stackRank(), b.Type.stackRank(); ra != rb {
			return ra < rb
		}
		return a.Code < b.Code
	})
	return out
}

type StackResult struct {
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	NewSubtotal     decimal.Decimal
	Results         []DiscountResult // in application order
	DiscountedItems []LineDiscount   // merged per cart line
}

// ApplyStack computes coupons sequentially, each against what the previous ones left.
func ApplyStack(coupons []*Coupon, cart Cart) StackResult {
	ordered := StackOrder(coupons)

	remaining := make([]decimal.Decimal, len(cart.Lines))
	for i, l := range cart.Lines {
		remaining[i] = l.Total()
	}
	subtotal := sumDecimals(remaining)

	perLine := make([]LineDiscount, len(cart.Lines))
	for i, l := range cart.Lines {
		perLine[i] = LineDiscount{SKU: l.SKU, DiscountAmount: decimal.Zero}
	}

	res := StackResult{
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		Results:        make([]DiscountResult, 0, len(ordered)),
	}

	seen := make(map[Code]struct{}, len(ordered))
	for _, c := range ordered {
		if _, dup := seen[c.Code]; dup {
			continue
		}
		seen[c.Code] = struct{}{}

		shares := shareOut(c, cart.Lines, remaining)
		r := report(c, cart.Lines, remaining, shares)
		res.Results = append(res.Results, r)
		res.DiscountAmount = res.DiscountAmount.Add(r.DiscountAmount)

		for i, sh := range shares {
			if !sh.amount.IsPositive() {
				continue
			}
			remaining[i] = remaining[i].Sub(sh.amount)
			perLine[i].DiscountAmount = perLine[i].DiscountAmount.Add(sh.amount)
			perLine[i].Quantity = max(perLine[i].Quantity, sh.units)
		}
	}

	if res.DiscountAmount.GreaterThan(subtotal) {
		res.DiscountAmount = subtotal
	}
	res.NewSubtotal = subtotal.Sub(res.DiscountAmount)

	res.DiscountedItems = []LineDiscount{}
	for _, d := range perLine {
		if d.DiscountAmount.IsPositive() {
			res.DiscountedItems = append(res.DiscountedItems, d)
		}
	}
	return res
}
