//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"coupon-engine/internal/domain/auth"
	"coupon-engine/internal/testutil/builder"
	"coupon-engine/internal/testutil/dbtest"
	"coupon-engine/internal/testutil/httptest"

	"github.com/stretchr/testify/suite"
)

type CouponFlowSuite struct {
	SharedSuite
}

func TestCouponFlowSuite(t *testing.T) {
	suite.Run(t, new(CouponFlowSuite))
}

type validationBody struct {
	Success        bool   `json:"success"`
	ReasonCode     string `json:"reasonCode"`
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discountAmount"`
	NewSubtotal    string `json:"newSubtotal"`
}

type redemptionBody struct {
	Code       string `json:"code"`
	UsageCount int    `json:"usageCount"`
}

func cart(items ...map[string]any) []map[string]any { return items }

func line(sku string, qty int, price string) map[string]any {
	return map[string]any{"sku": sku, "quantity": qty, "unitPrice": price}
}

func (s *CouponFlowSuite) TestValidateThenRedeem() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("SAVE10").Build())
	customer := s.Tokens.CustomerToken(s.T(), "user-42")

	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/validate", map[string]any{
		"code":      " save10 ",
		"cartItems": cart(line("SKU-SHIRT", 2, "100.00")),
	}, customer)
	var v validationBody
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &v)
	s.True(v.Success)
	s.Equal("200.00", v.Subtotal)
	s.Equal("20.00", v.DiscountAmount)
	s.Equal("180.00", v.NewSubtotal)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", map[string]any{
		"code":           "SAVE10",
		"orderReference": "ORD-1001",
		"userId":         "user-42",
		"discountAmount": "20.00",
	}, s.Tokens.ServiceToken(s.T()))
	var r redemptionBody
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &r)
	s.Equal("SAVE10", r.Code)
	s.Equal(1, r.UsageCount)

	s.Equal(1, dbtest.UsageCount(s.T(), s.DB, "SAVE10"))
	s.Equal(1, dbtest.RedemptionCount(s.T(), s.DB, "SAVE10"))

	// validation never moves counters
	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/validate", map[string]any{
		"code":      "SAVE10",
		"cartItems": cart(line("SKU-SHIRT", 1, "50.00")),
	}, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, dbtest.UsageCount(s.T(), s.DB, "SAVE10"))
}

func (s *CouponFlowSuite) TestRedeem_DuplicateOrder() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("SAVE10").Build())
	body := map[string]any{"code": "SAVE10", "orderReference": "ORD-7", "discountAmount": "5.00"}

	checkout := s.Tokens.ServiceToken(s.T())

	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", body, checkout)
	s.Equal(http.StatusCreated, w.Code)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", body, checkout)
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "already recorded")

	s.Equal(1, dbtest.UsageCount(s.T(), s.DB, "SAVE10"))
	s.Equal(1, dbtest.RedemptionCount(s.T(), s.DB, "SAVE10"))
}

func (s *CouponFlowSuite) seedRejectionCoupons() {
	capped := builder.NewCouponBuilder().WithCode("CAPPED").WithUsageLimit(3).Build()
	capped.UsageCount = 3
	dbtest.CreateTestCoupon(s.T(), s.DB, capped)
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("APPAREL").PercentOn("20").WithCategories("apparel").Build())
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("BIGCART").WithMinCart("500.00").Build())
}

func (s *CouponFlowSuite) TestRedeem_RequiresCheckoutCaller() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("SAVE10").WithUsageLimit(2).WithUserLimit(1).Build())

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"expired service token", s.Tokens.CreateExpiredToken(s.T(), "checkout-service", auth.RoleService), http.StatusUnauthorized},
		{"customer token", s.Tokens.CustomerToken(s.T(), "victim"), http.StatusForbidden},
	}
	for i, tt := range tests {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", map[string]any{
			"code":           "SAVE10",
			"orderReference": fmt.Sprintf("FAKE-%d", i),
			"userId":         "victim",
			"discountAmount": "1.00",
		}, tt.token)
		s.Equal(tt.status, w.Code, tt.name)
	}

	s.Equal(0, dbtest.UsageCount(s.T(), s.DB, "SAVE10"))
	s.Equal(0, dbtest.RedemptionCount(s.T(), s.DB, "SAVE10"))
}

func (s *CouponFlowSuite) TestValidate_Rejections() {
	cases := []struct {
		name   string
		code   string
		items  []map[string]any
		reason string
		status int
	}{
		{"unknown code", "NOPE", cart(line("SKU-SHIRT", 1, "10.00")), "NotFound", http.StatusOK},
		{"usage exhausted", "CAPPED", cart(line("SKU-SHIRT", 1, "10.00")), "UsageLimitReached", http.StatusOK},
		{"category from reference data", "APPAREL", cart(line("SKU-MUG", 1, "30.00")), "NotEligible", http.StatusOK},
		{"below minimum", "BIGCART", cart(line("SKU-SHIRT", 1, "499.99")), "BelowMinCart", http.StatusOK},
		{"malformed line", "APPAREL", cart(line("SKU-SHIRT", 0, "10.00")), "ParseError", http.StatusBadRequest},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.seedRejectionCoupons()
			w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/validate", map[string]any{
				"code":      tc.code,
				"cartItems": tc.items,
			}, "")
			var v validationBody
			httptest.DecodeResponseBody(s.T(), w, &v)
			s.Equal(tc.status, w.Code)
			s.False(v.Success)
			s.Equal(tc.reason, v.ReasonCode)
		})
	}
}

func (s *CouponFlowSuite) TestValidate_CategoryMatchesStoredMembership() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("APPAREL").PercentOn("20").WithCategories("apparel").Build())

	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/validate", map[string]any{
		"code":      "APPAREL",
		"cartItems": cart(line("SKU-JEANS", 1, "150.00"), line("SKU-MUG", 1, "50.00")),
	}, "")
	var v validationBody
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &v)
	s.Equal("30.00", v.DiscountAmount)
	s.Equal("170.00", v.NewSubtotal)
}

func (s *CouponFlowSuite) TestAutoApplyAndReconcile() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("WELCOME").Fixed("15.00").AutoApply().Stackable().Build())
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("MANUAL").Build())

	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/auto-apply", map[string]any{
		"cartItems": cart(line("SKU-SHIRT", 1, "100.00")),
	}, "")
	var list struct {
		Coupons []struct {
			Code           string `json:"code"`
			DiscountAmount string `json:"discountAmount"`
		} `json:"coupons"`
	}
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &list)
	s.Require().Len(list.Coupons, 1)
	s.Equal("WELCOME", list.Coupons[0].Code)
	s.Equal("15.00", list.Coupons[0].DiscountAmount)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/reconcile", map[string]any{
		"cartItems":          cart(line("SKU-SHIRT", 1, "100.00")),
		"appliedCouponCodes": []string{"GONE"},
	}, "")
	var rec struct {
		DiscountAmount string `json:"discountAmount"`
		AppliedCoupons []struct {
			Code string `json:"code"`
		} `json:"appliedCoupons"`
		RemovedCoupons []struct {
			Code       string `json:"code"`
			ReasonCode string `json:"reasonCode"`
		} `json:"removedCoupons"`
	}
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &rec)
	s.Equal("15.00", rec.DiscountAmount)
	s.Require().Len(rec.AppliedCoupons, 1)
	s.Equal("WELCOME", rec.AppliedCoupons[0].Code)
	s.Require().Len(rec.RemovedCoupons, 1)
	s.Equal("GONE", rec.RemovedCoupons[0].Code)
	s.Equal("NotFound", rec.RemovedCoupons[0].ReasonCode)
}

func (s *CouponFlowSuite) TestAdminLifecycle() {
	admin := s.Tokens.AdminToken(s.T())

	s.Run("requires an admin token", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/coupons", nil, "")
		s.Equal(http.StatusUnauthorized, w.Code)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/coupons", nil,
			s.Tokens.GenerateToken(s.T(), "user-1", auth.RoleCustomer))
		s.Equal(http.StatusForbidden, w.Code)
	})

	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/admin/coupons", map[string]any{
		"code":          "summer25",
		"name":          map[string]string{"en": "Summer sale", "he": "מבצע קיץ"},
		"discountType":  "percent_all",
		"discountValue": "25",
		"usageLimit":    100,
		"stackable":     true,
	}, admin)
	var created struct {
		Code          string `json:"code"`
		DiscountValue string `json:"discountValue"`
		IsActive      bool   `json:"isActive"`
		RemainingUses *int   `json:"remainingUses"`
	}
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &created)
	s.Equal("SUMMER25", created.Code)
	s.Equal("25", created.DiscountValue)
	s.True(created.IsActive)
	s.Require().NotNil(created.RemainingUses)
	s.Equal(100, *created.RemainingUses)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/admin/coupons", map[string]any{
		"code":          "SUMMER25",
		"name":          map[string]string{"en": "Summer again"},
		"discountType":  "percent_all",
		"discountValue": "5",
	}, admin)
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "already exists")

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/coupons?status=active", nil, admin)
	var list struct {
		Coupons []struct {
			Code string `json:"code"`
		} `json:"coupons"`
	}
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &list)
	s.Require().Len(list.Coupons, 1)
	s.Equal("SUMMER25", list.Coupons[0].Code)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/admin/coupons/summer25/deactivate", nil, admin)
	s.Equal(http.StatusOK, w.Code)

	w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/coupons/validate", map[string]any{
		"code":      "SUMMER25",
		"cartItems": cart(line("SKU-SHIRT", 1, "100.00")),
	}, "")
	var v validationBody
	httptest.DecodeResponseBody(s.T(), w, &v)
	s.Equal("InactiveCoupon", v.ReasonCode)
}

func (s *CouponFlowSuite) TestAdminRedemptionHistory() {
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("SAVE10").Build())
	for i := range 3 {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", map[string]any{
			"code":           "SAVE10",
			"orderReference": fmt.Sprintf("ORD-%d", i),
			"discountAmount": "1.00",
		}, s.Tokens.ServiceToken(s.T()))
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	admin := s.Tokens.AdminToken(s.T())
	var page struct {
		Items []struct {
			OrderReference string `json:"orderReference"`
		} `json:"items"`
		NextCursor string `json:"nextCursor"`
	}
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/coupons/SAVE10/redemptions?limit=2", nil, admin)
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &page)
	s.Len(page.Items, 2)
	s.Require().NotEmpty(page.NextCursor)

	seen := map[string]bool{page.Items[0].OrderReference: true, page.Items[1].OrderReference: true}
	w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet,
		"/api/admin/coupons/SAVE10/redemptions?limit=2&cursor="+page.NextCursor, nil, admin)
	page.NextCursor = ""
	page.Items = nil
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &page)
	s.Require().Len(page.Items, 1)
	s.False(seen[page.Items[0].OrderReference])
	s.Empty(page.NextCursor)
}

// Every request races for the last uses; the conditional increment must admit exactly the limit.
func (s *CouponFlowSuite) TestConcurrentRedemption_RespectsUsageLimit() {
	const (
		limit    = 5
		requests = 40
	)
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("FLASH").WithUsageLimit(limit).Build())
	checkout := s.Tokens.ServiceToken(s.T())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", map[string]any{
				"code":           "FLASH",
				"orderReference": fmt.Sprintf("RACE-%d", i),
				"discountAmount": "3.00",
			}, checkout)
			mu.Lock()
			statuses[w.Code]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	s.Equal(limit, statuses[http.StatusCreated])
	s.Equal(requests-limit, statuses[http.StatusConflict])
	s.Equal(limit, dbtest.UsageCount(s.T(), s.DB, "FLASH"))
	s.Equal(limit, dbtest.RedemptionCount(s.T(), s.DB, "FLASH"))
}

func (s *CouponFlowSuite) TestConcurrentRedemption_RespectsPerUserLimit() {
	const attempts = 10
	dbtest.CreateTestCoupon(s.T(), s.DB, builder.NewCouponBuilder().WithCode("ONCE").WithUserLimit(1).Build())
	checkout := s.Tokens.ServiceToken(s.T())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/redemptions", map[string]any{
				"code":           "ONCE",
				"orderReference": fmt.Sprintf("USER-%d", i),
				"userId":         "user-7",
				"discountAmount": "1.00",
			}, checkout)
			if w.Code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(1, dbtest.UsageCount(s.T(), s.DB, "ONCE"))
	s.Equal(1, dbtest.RedemptionCount(s.T(), s.DB, "ONCE"))
}
