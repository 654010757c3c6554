package coupon

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors collects admin input problems keyed by field name.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid coupon: " + strings.Join(parts, "; ")
}

func (f FieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Validate checks type-specific required fields. It returns nil or FieldErrors.
func (c *Coupon) Validate() error {
	errs := FieldErrors{}

	if _, err := NewCouponCode(c.Code.String()); err != nil {
		errs.add("code", "must be 2-40 characters of A-Z, 0-9, '-' or '_'")
	}
	if strings.TrimSpace(c.Name.EN) == "" {
		errs.add("name.en", "is required")
	}
	if !c.Type.IsValid() {
		errs.add("discountType", "must be one of percent_all, percent_specific, fixed, bogo")
	}

	switch c.Type {
	case TypePercentAll, TypePercentSpecific:
		if !c.Value.IsPositive() || c.Value.GreaterThan(hundred) {
			errs.add("discountValue", "percentage must be greater than 0 and at most 100")
		}
	case TypeFixed:
		if !c.Value.IsPositive() {
			errs.add("discountValue", "amount must be greater than 0")
		} else if !c.Value.Equal(RoundMoney(c.Value)) {
			errs.add("discountValue", "amount must have at most 2 decimal places")
		}
	case TypeBogo:
		if c.BogoBuyQuantity <= 0 {
			errs.add("bogoBuyQuantity", "must be a positive integer")
		} else if c.BogoBuyQuantity > MaxLineQuantity {
			errs.add("bogoBuyQuantity", fmt.Sprintf("must not exceed %d", MaxLineQuantity))
		}
		if c.BogoGetQuantity <= 0 {
			errs.add("bogoGetQuantity", "must be a positive integer")
		} else if c.BogoGetQuantity > MaxLineQuantity {
			errs.add("bogoGetQuantity", fmt.Sprintf("must not exceed %d", MaxLineQuantity))
		}
		if c.Value.IsNegative() {
			errs.add("discountValue", "must not be negative")
		}
	}

	if c.Type == TypePercentSpecific && !c.IsRestricted() {
		errs.add("eligibleProducts", "percent_specific requires eligibleProducts or eligibleCategories")
	}

	if c.MinCartValue != nil && c.MinCartValue.IsNegative() {
		errs.add("minCartValue", "must not be negative")
	}
	if c.UsageLimit != nil && *c.UsageLimit <= 0 {
		errs.add("usageLimit", "must be a positive integer")
	}
	if c.UsageLimitPerUser != nil && *c.UsageLimitPerUser <= 0 {
		errs.add("usageLimitPerUser", "must be a positive integer")
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		errs.add("endDate", "must not be before startDate")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
