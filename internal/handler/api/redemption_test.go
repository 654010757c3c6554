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
	commandsmock "coupon-engine/internal/mock/commands"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/testutil"
	"coupon-engine/internal/testutil/builder"
	"coupon-engine/internal/testutil/httptest"
	"coupon-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RedemptionHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockRedemptionCommands
	handler      *api.RedemptionHandler
}

func (s *RedemptionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockRedemptionCommands(s.mockCtrl)
	s.handler = api.NewRedemptionHandler(s.mockCommands)

	s.router.POST("/redemptions", fakeAuth, s.handler.Record)
}

func (s *RedemptionHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRedemptionHandlerSuite(t *testing.T) {
	suite.Run(t, new(RedemptionHandlerTestSuite))
}

func redemptionRequest() reqdto.RecordRedemptionRequest {
	return reqdto.RecordRedemptionRequest{
		Code:           "SAVE10",
		OrderReference: "order-1001",
		DiscountAmount: decimal.RequireFromString("38.00"),
	}
}

func recordedResult() *commands.RecordRedemptionResult {
	return &commands.RecordRedemptionResult{
		Redemption: &coupon.Redemption{
			ID:             uuid.New(),
			CouponCode:     "SAVE10",
			UserID:         "token-user",
			OrderReference: "order-1001",
			DiscountAmount: decimal.RequireFromString("38"),
			RedeemedAt:     builder.BaseTime,
		},
		UsageCount:      3,
		UserRedemptions: 1,
	}
}

func (s *RedemptionHandlerTestSuite) TestRecord() {
	url := "/redemptions"

	s.Run("success: returns 201 with counters", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.RecordRedemptionRequest) (*commands.RecordRedemptionResult, error) {
				s.Equal("shopper-9", req.UserID)
				s.Equal("order-1001", req.OrderReference)
				return recordedResult(), nil
			}).Times(1)

		body := testutil.DtoMap(s.T(), redemptionRequest(), testutil.Field("userId", "shopper-9"))
		var got resdto.RedemptionResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &got)

		s.Equal("38.00", got.DiscountAmount)
		s.Equal(3, got.UsageCount)
		s.Equal(1, got.UserRedemptions)
	})

	s.Run("shopper comes from the body, never from the caller token", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.RecordRedemptionRequest) (*commands.RecordRedemptionResult, error) {
				s.Empty(req.UserID)
				return recordedResult(), nil
			}).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, redemptionRequest(), "bearer-token")
		s.Equal(http.StatusCreated, w.Code)
	})

	limits := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "global limit", err: commands.ErrUsageLimitReached, reason: "UsageLimitReached"},
		{name: "per-user limit", err: commands.ErrUserLimitReached, reason: "UserLimitReached"},
	}
	for _, tt := range limits {
		s.Run("limit reached is a retryable 409: "+tt.name, func() {
			s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
				Return(nil, errs.Mark(errors.New("guard matched no rows"), tt.err)).Times(1)

			w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, redemptionRequest(), "")

			s.Equal(http.StatusConflict, w.Code)
			var got resdto.RedemptionRejectedResponse
			httptest.DecodeResponseBody(s.T(), w, &got)
			s.Equal(tt.reason, got.ReasonCode)
			s.True(got.Retryable)
			s.NotEmpty(got.Messages.HE)
		})
	}

	s.Run("duplicate order is a 409", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("unique violation"), commands.ErrRedemptionExists)).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, redemptionRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "already recorded")
	})

	s.Run("unknown coupon is a 404", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("no rows"), commands.ErrCouponNotFound)).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, redemptionRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Coupon not found")
	})

	s.Run("field errors are a 422 with details", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(coupon.FieldErrors{"orderReference": "is required"}, commands.ErrInvalidRedemption)).Times(1)

		body := testutil.DtoMap(s.T(), redemptionRequest(), testutil.Field("orderReference", nil))
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "Invalid redemption")
		s.Contains(w.Body.String(), `"orderReference":"is required"`)
	})

	s.Run("malformed body is a 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, `{"discountAmount": "x"}`, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})

	s.Run("store failure is a 500", func() {
		s.mockCommands.EXPECT().RecordRedemption(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, redemptionRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Failed to record redemption")
	})
}
