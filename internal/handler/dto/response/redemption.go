package response

import (
	"time"

	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/commands"
	"coupon-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type RedemptionResponse struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	OrderReference  string    `json:"orderReference"`
	UserID          string    `json:"userId,omitempty"`
	DiscountAmount  string    `json:"discountAmount"`
	RedeemedAt      time.Time `json:"redeemedAt"`
	UsageCount      int       `json:"usageCount"`
	UserRedemptions int       `json:"userRedemptions,omitempty"`
}

func FromRecordRedemptionResult(r *commands.RecordRedemptionResult) RedemptionResponse {
	return RedemptionResponse{
		ID:              r.Redemption.ID,
		Code:            r.Redemption.CouponCode.String(),
		OrderReference:  r.Redemption.OrderReference,
		UserID:          r.Redemption.UserID,
		DiscountAmount:  money(r.Redemption.DiscountAmount),
		RedeemedAt:      r.Redemption.RedeemedAt,
		UsageCount:      r.UsageCount,
		UserRedemptions: r.UserRedemptions,
	}
}

// RedemptionRejectedResponse is returned with 409 when a limit was hit between
// validation and checkout.
type RedemptionRejectedResponse struct {
	Success    bool      `json:"success" example:"false"`
	ReasonCode string    `json:"reasonCode" example:"UsageLimitReached"`
	Message    string    `json:"message"`
	Messages   i18n.Text `json:"messages"`
	Retryable  bool      `json:"retryable"`
}

type RedemptionItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	OrderReference string    `json:"orderReference"`
	UserID         string    `json:"userId,omitempty"`
	DiscountAmount string    `json:"discountAmount"`
	RedeemedAt     time.Time `json:"redeemedAt"`
}

type RedemptionListResponse struct {
	Items      []RedemptionItemResponse `json:"items"`
	NextCursor string                   `json:"nextCursor,omitempty"`
}

func FromRedemptionViews(views []*queries.RedemptionView, next *queries.Cursor) RedemptionListResponse {
	out := RedemptionListResponse{Items: make([]RedemptionItemResponse, len(views))}
	for i, v := range views {
		out.Items[i] = RedemptionItemResponse{
			ID:             v.ID,
			Code:           v.CouponCode.String(),
			OrderReference: v.OrderReference,
			UserID:         v.UserID,
			DiscountAmount: money(v.DiscountAmount),
			RedeemedAt:     v.RedeemedAt,
		}
	}
	if next != nil {
		out.NextCursor = next.After
	}
	return out
}
