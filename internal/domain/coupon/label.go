package coupon

import (
	"strconv"

	"coupon-engine/internal/pkg/i18n"

	"github.com/shopspring/decimal"
)

// Label renders the shopper-facing badge, e.g. "10% OFF", "₪20 off", "Buy 1 get 1 free".
func Label(c *Coupon, currency string) i18n.Text {
	switch c.Type {
	case TypePercentAll, TypePercentSpecific:
		return i18n.Lookup("label.percent", i18n.Params{"value": displayNumber(c.Value)})
	case TypeFixed:
		return i18n.Lookup("label.fixed", i18n.Params{
			"symbol": i18n.CurrencySymbol(currency),
			"value":  displayNumber(c.Value),
		})
	case TypeBogo:
		return i18n.Lookup("label.bogo", i18n.Params{
			"buy": strconv.Itoa(c.BogoBuyQuantity),
			"get": strconv.Itoa(c.BogoGetQuantity),
		})
	default:
		return i18n.Text{EN: c.Code.String(), HE: c.Code.String()}
	}
}

// AppliedMessage is the success text shown after a code is accepted.
func AppliedMessage(c *Coupon) i18n.Text {
	return i18n.Lookup("coupon.applied", i18n.Params{"code": c.Code.String()})
}

func displayNumber(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.StringFixed(moneyPlaces)
}
