package coupon

import "coupon-engine/internal/pkg/i18n"

type ReasonCode string

const (
	ReasonNotFound          ReasonCode = "NotFound"
	ReasonInactiveCoupon    ReasonCode = "InactiveCoupon"
	ReasonNotStarted        ReasonCode = "NotStarted"
	ReasonExpired           ReasonCode = "Expired"
	ReasonBelowMinCart      ReasonCode = "BelowMinCart"
	ReasonUsageLimitReached ReasonCode = "UsageLimitReached"
	ReasonUserLimitReached  ReasonCode = "UserLimitReached"
	ReasonNotEligible       ReasonCode = "NotEligible"
	ReasonNotStackable      ReasonCode = "NotStackable"
	ReasonParseError        ReasonCode = "ParseError"
)

func (r ReasonCode) String() string {
	return string(r)
}

// Rejection is a recoverable, user-facing validation failure.
type Rejection struct {
	Code   Code
	Reason ReasonCode
	Params i18n.Params
}

func Reject(code Code, reason ReasonCode) *Rejection {
	return &Rejection{Code: code, Reason: reason}
}

func (r *Rejection) Messages() i18n.Text {
	return i18n.Lookup("reason."+r.Reason.String(), r.Params)
}
