package coupon

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCouponCode   = errors.New("invalid coupon code format")
	ErrInvalidDiscountType = errors.New("invalid discount type")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,39}$`)

// Code is always stored upper-case so lookups are case-insensitive.
type Code string

func NewCouponCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

// NormalizeCode upper-cases without validating the format; used for lookups.
func NormalizeCode(code string) Code {
	return Code(strings.TrimSpace(strings.ToUpper(code)))
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	TypePercentAll      DiscountType = "percent_all"
	TypePercentSpecific DiscountType = "percent_specific"
	TypeFixed           DiscountType = "fixed"
	TypeBogo            DiscountType = "bogo"
)

func (t DiscountType) String() string {
	return string(t)
}

func (t DiscountType) IsValid() bool {
	switch t {
	case TypePercentAll, TypePercentSpecific, TypeFixed, TypeBogo:
		return true
	default:
		return false
	}
}

func (t DiscountType) IsPercent() bool {
	return t == TypePercentAll || t == TypePercentSpecific
}

func NewDiscountType(s string) (DiscountType, error) {
	t := DiscountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidDiscountType
	}
	return t, nil
}

// stackRank breaks creation-time ties when stacking: percent, then fixed, then bogo.
func (t DiscountType) stackRank() int {
	switch t {
	case TypePercentAll, TypePercentSpecific:
		return 0
	case TypeFixed:
		return 1
	default:
		return 2
	}
}

// Set is an unordered collection of identifiers (SKUs or category ids).
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) HasAny(values []string) bool {
	for _, v := range values {
		if s.Has(v) {
			return true
		}
	}
	return false
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sortStrings(out)
	return out
}
