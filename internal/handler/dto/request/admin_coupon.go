package request

import (
	"strings"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

// CouponRequest is the full definition used by both create and update.
type CouponRequest struct {
	Code          string           `json:"code"`
	Name          i18n.Text        `json:"name"`
	Description   i18n.Text        `json:"description"`
	DiscountType  string           `json:"discountType" example:"percent_all"`
	DiscountValue decimal.Decimal  `json:"discountValue" swaggertype:"string" example:"10"`
	MinCartValue  *decimal.Decimal `json:"minCartValue,omitempty" swaggertype:"string"`

	// RFC 3339 timestamps or plain dates; a plain end date covers the whole day
	StartDate *string `json:"startDate,omitempty" example:"2026-01-01"`
	EndDate   *string `json:"endDate,omitempty" example:"2026-01-31"`

	UsageLimit        *int  `json:"usageLimit,omitempty"`
	UsageLimitPerUser *int  `json:"usageLimitPerUser,omitempty"`
	Stackable         bool  `json:"stackable"`
	AutoApply         bool  `json:"autoApply"`
	IsActive          *bool `json:"isActive,omitempty"`

	EligibleProducts   []string `json:"eligibleProducts,omitempty"`
	EligibleCategories []string `json:"eligibleCategories,omitempty"`

	BogoBuyQuantity  int      `json:"bogoBuyQuantity,omitempty"`
	BogoGetQuantity  int      `json:"bogoGetQuantity,omitempty"`
	BogoEligibleSkus []string `json:"bogoEligibleSkus,omitempty"`
}

// ToInput resolves plain dates in loc, the business time zone. Unparseable dates
// are reported as field errors.
func (r CouponRequest) ToInput(loc *time.Location) (commands.CouponInput, error) {
	fields := coupon.FieldErrors{}

	start, err := parseBoundary(r.StartDate, loc, false)
	if err != nil {
		fields["startDate"] = "must be an RFC 3339 timestamp or YYYY-MM-DD"
	}
	end, err := parseBoundary(r.EndDate, loc, true)
	if err != nil {
		fields["endDate"] = "must be an RFC 3339 timestamp or YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return commands.CouponInput{}, fields
	}

	return commands.CouponInput{
		Code:               r.Code,
		Name:               r.Name,
		Description:        r.Description,
		Type:               r.DiscountType,
		Value:              r.DiscountValue,
		MinCartValue:       r.MinCartValue,
		StartDate:          start,
		EndDate:            end,
		UsageLimit:         r.UsageLimit,
		UsageLimitPerUser:  r.UsageLimitPerUser,
		Stackable:          r.Stackable,
		AutoApply:          r.AutoApply,
		IsActive:           r.IsActive,
		EligibleProducts:   r.EligibleProducts,
		EligibleCategories: r.EligibleCategories,
		BogoBuyQuantity:    r.BogoBuyQuantity,
		BogoGetQuantity:    r.BogoGetQuantity,
		BogoEligibleSkus:   r.BogoEligibleSkus,
	}, nil
}

func parseBoundary(raw *string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return &u, nil
	}
	d, err := time.ParseInLocation(dateOnly, s, loc)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	u := d.UTC()
	return &u, nil
}

// CouponListQuery binds the admin listing filters.
type CouponListQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=active inactive all"`
	Type      string `form:"type" binding:"omitempty,oneof=percent_all percent_specific fixed bogo"`
	AutoApply *bool  `form:"autoApply"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

// Active maps status onto the store filter; "all" and empty mean no filter.
func (q CouponListQuery) Active() *bool {
	switch q.Status {
	case "active":
		v := true
		return &v
	case "inactive":
		v := false
		return &v
	default:
		return nil
	}
}

func (q CouponListQuery) DiscountType() *coupon.DiscountType {
	if q.Type == "" {
		return nil
	}
	t := coupon.DiscountType(q.Type)
	return &t
}

type RedemptionListQuery struct {
	Limit int    `form:"limit" binding:"omitempty,min=1"`
	After string `form:"after"`
}
