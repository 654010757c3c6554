package api

import (
	"context"
	"net/http"

	"coupon-engine/internal/domain/coupon"
	reqdto "coupon-engine/internal/handler/dto/request"
	resdto "coupon-engine/internal/handler/dto/response"
	"coupon-engine/internal/handler/httperr"
	"coupon-engine/internal/handler/middleware"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// CouponHandler serves the storefront: validation, auto-apply discovery and
// reconciliation after cart changes. None of these endpoints mutate state.
type CouponHandler struct {
	q queries.ValidationQueries
}

func NewCouponHandler(q queries.ValidationQueries) *CouponHandler {
	return &CouponHandler{q: q}
}

// @Summary Validate coupon
// @Description Validate a coupon code against a priced cart and the codes already applied
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body reqdto.ValidateCouponRequest true "Validation request"
// @Success 200 {object} resdto.ValidationSuccessResponse
// @Success 200 {object} resdto.ValidationFailureResponse
// @Failure 400 {object} resdto.ValidationFailureResponse
// @Failure 500 {object} httperr.Response
// @Router /api/coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	var req reqdto.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondParseError(c)
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.q.Validate(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		abortValidation(c, err)
		return
	}
	respondValidation(c, result)
}

// @Summary List auto-apply coupons
// @Description List auto-apply coupons the cart currently qualifies for, best discount first
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body reqdto.CartRequest true "Cart"
// @Success 200 {object} resdto.AutoApplyListResponse
// @Failure 400 {object} resdto.ValidationFailureResponse
// @Failure 500 {object} httperr.Response
// @Router /api/coupons/auto-apply [post]
func (h *CouponHandler) AutoApply(c *gin.Context) {
	var req reqdto.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondParseError(c)
		return
	}

	userID, _ := middleware.GetUserID(c)
	candidates, err := h.q.ListAutoApplyCandidates(c.Request.Context(), req.ToCartInput(userID))
	if err != nil {
		if errs.Is(err, queries.ErrInvalidCart) {
			respondParseError(c)
			return
		}
		abortValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAutoApplyCandidates(candidates))
}

// @Summary Reconcile applied coupons
// @Description Recompute the applied coupon set after a cart mutation
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body reqdto.ReconcileCouponsRequest true "Reconcile request"
// @Success 200 {object} resdto.ValidationSuccessResponse
// @Failure 400 {object} resdto.ValidationFailureResponse
// @Failure 500 {object} httperr.Response
// @Router /api/coupons/reconcile [post]
func (h *CouponHandler) Reconcile(c *gin.Context) {
	var req reqdto.ReconcileCouponsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondParseError(c)
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.q.Reconcile(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		abortValidation(c, err)
		return
	}
	respondValidation(c, result)
}

func respondValidation(c *gin.Context, result *queries.ValidationResult) {
	status := http.StatusOK
	if !result.Success && result.ReasonCode == coupon.ReasonParseError {
		status = http.StatusBadRequest
	}
	c.JSON(status, resdto.FromValidationResult(result))
}

// respondParseError answers an undecodable body in the same shape as a rejected cart.
func respondParseError(c *gin.Context) {
	rej := coupon.Reject("", coupon.ReasonParseError)
	msgs := rej.Messages()
	locale := i18n.ParseLocale(c.GetHeader("Accept-Language"), i18n.LocaleEN)
	c.JSON(http.StatusBadRequest, resdto.ValidationFailureResponse{
		Success:    false,
		ReasonCode: rej.Reason.String(),
		Message:    msgs.In(locale),
		Messages:   msgs,
	})
}

func abortValidation(c *gin.Context, err error) {
	if errs.Is(err, context.DeadlineExceeded) {
		httperr.AbortWithError(c, http.StatusGatewayTimeout, err, "Coupon validation timed out", nil)
		return
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Coupon validation failed", nil)
}
