//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/handler/api"
	reqdto "coupon-engine/internal/handler/dto/request"
	resdto "coupon-engine/internal/handler/dto/response"
	queriesmock "coupon-engine/internal/mock/queries"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/testutil"
	"coupon-engine/internal/testutil/httptest"
	"coupon-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CouponHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockValidationQueries
	handler     *api.CouponHandler
}

// fakeAuth stands in for OptionalAuth: an Authorization header identifies the shopper.
func fakeAuth(c *gin.Context) {
	if c.GetHeader("Authorization") != "" {
		c.Set("user_id", "token-user")
	}
	c.Next()
}

func (s *CouponHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockValidationQueries(s.mockCtrl)
	s.handler = api.NewCouponHandler(s.mockQueries)

	s.router.POST("/coupons/validate", fakeAuth, s.handler.Validate)
	s.router.POST("/coupons/auto-apply", fakeAuth, s.handler.AutoApply)
	s.router.POST("/coupons/reconcile", fakeAuth, s.handler.Reconcile)
}

func (s *CouponHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCouponHandlerSuite(t *testing.T) {
	suite.Run(t, new(CouponHandlerTestSuite))
}

func validateRequest() reqdto.ValidateCouponRequest {
	return reqdto.ValidateCouponRequest{
		CartRequest: reqdto.CartRequest{
			CartItems: []reqdto.CartItemRequest{
				{SKU: "SKU-A", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
			},
			Currency: "ILS",
			Locale:   "he",
		},
		Code: "SAVE10",
	}
}

func successResult() *queries.ValidationResult {
	return &queries.ValidationResult{
		Success:        true,
		Locale:         i18n.LocaleHE,
		Currency:       "ILS",
		Code:           "SAVE10",
		Label:          i18n.Text{EN: "10% OFF", HE: "10% הנחה"},
		Subtotal:       decimal.RequireFromString("100"),
		DiscountAmount: decimal.RequireFromString("10"),
		NewSubtotal:    decimal.RequireFromString("90"),
		DiscountedItems: []coupon.LineDiscount{
			{SKU: "SKU-A", Quantity: 2, DiscountAmount: decimal.RequireFromString("10")},
		},
		Applied: []queries.AppliedCoupon{
			{Code: "SAVE10", Type: coupon.TypePercentAll, DiscountAmount: decimal.RequireFromString("10")},
		},
		Removed:  []queries.RemovedCoupon{},
		Messages: i18n.Text{EN: "Coupon SAVE10 applied successfully", HE: "הקופון SAVE10 הופעל בהצלחה"},
	}
}

// ================================================================================
// TestValidate
// ================================================================================

func (s *CouponHandlerTestSuite) TestValidate() {
	url := "/coupons/validate"

	s.Run("success: money is rendered with two places and message follows locale", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(successResult(), nil).Times(1)

		var got resdto.ValidationSuccessResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest(), "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		s.True(got.Success)
		s.Equal("100.00", got.Subtotal)
		s.Equal("10.00", got.DiscountAmount)
		s.Equal("90.00", got.NewSubtotal)
		s.Equal("10.00", got.DiscountedItems[0].DiscountAmount)
		s.Equal("SAVE10", got.Coupon.Code)
		s.Equal("הקופון SAVE10 הופעל בהצלחה", got.Message)
		s.Empty(got.RemovedCoupons)
	})

	s.Run("rejection is a 200 with reason code", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(&queries.ValidationResult{
			Locale:     i18n.LocaleEN,
			Code:       "SAVE10",
			ReasonCode: coupon.ReasonExpired,
			Messages:   i18n.Text{EN: "This coupon has expired", HE: "תוקף הקופון פג"},
		}, nil).Times(1)

		var got resdto.ValidationFailureResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest(), "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		s.False(got.Success)
		s.Equal("Expired", got.ReasonCode)
		s.Equal("This coupon has expired", got.Message)
		s.Equal("תוקף הקופון פג", got.Messages.HE)
	})

	s.Run("parse error result is a 400", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(&queries.ValidationResult{
			ReasonCode: coupon.ReasonParseError,
		}, nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest(), "")

		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), `"reasonCode":"ParseError"`)
	})

	s.Run("malformed body never reaches the engine", func() {
		bodies := []any{
			"{not json",
			testutil.DtoMap(s.T(), validateRequest(), testutil.Field("cartItems", "oops")),
			testutil.DtoMap(s.T(), validateRequest(), testutil.Field("cartItems", []any{map[string]any{"sku": "A", "quantity": 1, "unitPrice": "abc"}})),
		}
		for _, body := range bodies {
			w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, body, "", map[string]string{"Accept-Language": "he"})

			s.Equal(http.StatusBadRequest, w.Code)
			var got resdto.ValidationFailureResponse
			httptest.DecodeResponseBody(s.T(), w, &got)
			s.Equal("ParseError", got.ReasonCode)
			s.Equal("נתוני העגלה אינם תקינים", got.Message)
		}
	})

	s.Run("authenticated user wins over body userId", func() {
		req := validateRequest()
		bodyUser := "body-user"
		req.UserID = &bodyUser

		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in queries.ValidateInput) (*queries.ValidationResult, error) {
				s.Equal("token-user", in.UserID)
				return successResult(), nil
			}).Times(1)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "bearer-token")
		s.Equal(http.StatusOK, w.Code)

		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in queries.ValidateInput) (*queries.ValidationResult, error) {
				s.Equal("body-user", in.UserID)
				return successResult(), nil
			}).Times(1)
		w = httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("timeout is a 504", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(context.DeadlineExceeded, queries.ErrValidationAbort)).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusGatewayTimeout, "timed out")
	})

	s.Run("store failure is a 500", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Coupon validation failed")
	})
}

// ================================================================================
// TestAutoApply
// ================================================================================

func (s *CouponHandlerTestSuite) TestAutoApply() {
	url := "/coupons/auto-apply"

	s.Run("success", func() {
		s.mockQueries.EXPECT().ListAutoApplyCandidates(gomock.Any(), gomock.Any()).Return([]*queries.AutoApplyCandidate{
			{Code: "AUTO5", Type: coupon.TypePercentAll, DiscountAmount: decimal.RequireFromString("5")},
		}, nil).Times(1)

		var got resdto.AutoApplyListResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest().CartRequest, "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		s.Len(got.Coupons, 1)
		s.Equal("5.00", got.Coupons[0].DiscountAmount)
		s.Equal("percent_all", got.Coupons[0].DiscountType)
	})

	s.Run("empty list is an empty array", func() {
		s.mockQueries.EXPECT().ListAutoApplyCandidates(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validateRequest().CartRequest, "")

		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"coupons":[]}`, w.Body.String())
	})

	s.Run("invalid cart is a parse error", func() {
		s.mockQueries.EXPECT().ListAutoApplyCandidates(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(coupon.ErrEmptyCart, queries.ErrInvalidCart)).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.CartRequest{}, "")

		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), "ParseError")
	})
}

// ================================================================================
// TestReconcile
// ================================================================================

func (s *CouponHandlerTestSuite) TestReconcile() {
	url := "/coupons/reconcile"

	result := successResult()
	result.Code = ""
	result.Messages = i18n.Text{}
	result.Removed = []queries.RemovedCoupon{
		{Code: "MIN100", Reason: coupon.ReasonBelowMinCart, Messages: i18n.Text{EN: "Cart total must be at least ₪100.00 to use this coupon"}},
	}

	s.mockQueries.EXPECT().Reconcile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in queries.ReconcileInput) (*queries.ValidationResult, error) {
			s.Equal([]string{"SAVE10", "MIN100"}, in.AppliedCodes)
			return result, nil
		}).Times(1)

	body := reqdto.ReconcileCouponsRequest{
		CartRequest:        validateRequest().CartRequest,
		AppliedCouponCodes: []string{"SAVE10", "MIN100"},
	}
	var got resdto.ValidationSuccessResponse
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

	s.Nil(got.Coupon)
	s.Len(got.AppliedCoupons, 1)
	s.Len(got.RemovedCoupons, 1)
	s.Equal("BelowMinCart", got.RemovedCoupons[0].ReasonCode)
}
