package api

import (
	"net/http"

	"coupon-engine/internal/domain/coupon"
	reqdto "coupon-engine/internal/handler/dto/request"
	resdto "coupon-engine/internal/handler/dto/response"
	"coupon-engine/internal/handler/httperr"
	"coupon-engine/internal/pkg/config"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/usecase/commands"
	"coupon-engine/internal/usecase/queries"
	"coupon-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// AdminCouponHandler is the back office API. Routes are mounted behind admin auth.
type AdminCouponHandler struct {
	cmds       commands.CouponCommands
	q          queries.CouponQueries
	validation queries.ValidationQueries
	cfg        config.CouponConfig
}

func NewAdminCouponHandler(cmds commands.CouponCommands, q queries.CouponQueries, validation queries.ValidationQueries, cfg config.Config) *AdminCouponHandler {
	return &AdminCouponHandler{cmds: cmds, q: q, validation: validation, cfg: cfg.Coupon}
}

// @Summary Create coupon
// @Tags admin-coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CouponRequest true "Coupon definition"
// @Success 201 {object} resdto.CouponResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/admin/coupons [post]
func (h *AdminCouponHandler) Create(c *gin.Context) {
	in, ok := h.bindCoupon(c)
	if !ok {
		return
	}
	created, err := h.cmds.Create(c.Request.Context(), in)
	if err != nil {
		abortCouponCommand(c, err)
		return
	}
	h.respondCoupon(c, http.StatusCreated, created)
}

// @Summary Update coupon
// @Description Replace a coupon definition. The code is the path key and never changes.
// @Tags admin-coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Param request body reqdto.CouponRequest true "Coupon definition"
// @Success 200 {object} resdto.CouponResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/admin/coupons/{code} [put]
func (h *AdminCouponHandler) Update(c *gin.Context) {
	in, ok := h.bindCoupon(c)
	if !ok {
		return
	}
	updated, err := h.cmds.Update(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		abortCouponCommand(c, err)
		return
	}
	h.respondCoupon(c, http.StatusOK, updated)
}

// @Summary Deactivate coupon
// @Tags admin-coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 200 {object} resdto.CouponResponse
// @Failure 404 {object} httperr.Response
// @Router /api/admin/coupons/{code}/deactivate [post]
func (h *AdminCouponHandler) Deactivate(c *gin.Context) {
	deactivated, err := h.cmds.Deactivate(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortCouponCommand(c, err)
		return
	}
	h.respondCoupon(c, http.StatusOK, deactivated)
}

// @Summary List coupons
// @Tags admin-coupons
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, inactive or all"
// @Param type query string false "percent_all, percent_specific, fixed or bogo"
// @Param autoApply query bool false "Only auto-apply (true) or manual (false) coupons"
// @Param limit query int false "Max items (default 20)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} resdto.CouponListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/admin/coupons [get]
func (h *AdminCouponHandler) List(c *gin.Context) {
	var query reqdto.CouponListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	filter := shared.CouponFilter{
		Active:    query.Active(),
		Type:      query.DiscountType(),
		AutoApply: query.AutoApply,
		Limit:     queries.ValidateLimit(query.Limit),
		Offset:    query.Offset,
	}
	views, err := h.q.List(c.Request.Context(), filter)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list coupons", nil)
		return
	}
	items, err := resdto.FromCouponViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render coupons", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.CouponListResponse{Coupons: items, Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Get coupon
// @Tags admin-coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 200 {object} resdto.CouponResponse
// @Failure 404 {object} httperr.Response
// @Router /api/admin/coupons/{code} [get]
func (h *AdminCouponHandler) Get(c *gin.Context) {
	view, err := h.q.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errs.Is(err, queries.ErrCouponNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load coupon", nil)
		return
	}
	resp, err := resdto.FromCouponView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render coupon", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Test coupon
// @Description Run validation for this coupon against a sample cart without recording anything
// @Tags admin-coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Param request body reqdto.ValidateCouponRequest true "Sample cart; code is taken from the path"
// @Success 200 {object} resdto.ValidationSuccessResponse
// @Failure 400 {object} resdto.ValidationFailureResponse
// @Router /api/admin/coupons/{code}/test [post]
func (h *AdminCouponHandler) Test(c *gin.Context) {
	var req reqdto.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondParseError(c)
		return
	}
	req.Code = c.Param("code")

	// the admin's own token must not count against per-user limits
	in := req.ToInput("")
	result, err := h.validation.Validate(c.Request.Context(), in)
	if err != nil {
		abortValidation(c, err)
		return
	}
	respondValidation(c, result)
}

// @Summary List coupon redemptions
// @Tags admin-coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.RedemptionListResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/admin/coupons/{code}/redemptions [get]
func (h *AdminCouponHandler) Redemptions(c *gin.Context) {
	var query reqdto.RedemptionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	var cursor *queries.Cursor
	if query.After != "" {
		cursor = &queries.Cursor{After: query.After}
	}

	items, next, err := h.q.Redemptions(c.Request.Context(), c.Param("code"), cursor, query.Limit)
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrCouponNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
		case errs.Is(err, queries.ErrInvalidCursor):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list redemptions", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromRedemptionViews(items, next))
}

func (h *AdminCouponHandler) bindCoupon(c *gin.Context) (commands.CouponInput, bool) {
	var req reqdto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return commands.CouponInput{}, false
	}
	in, err := req.ToInput(h.cfg.Location())
	if err != nil {
		abortWithFieldErrors(c, err, "Coupon validation failed")
		return commands.CouponInput{}, false
	}
	return in, true
}

func (h *AdminCouponHandler) respondCoupon(c *gin.Context, status int, cp *coupon.Coupon) {
	resp, err := resdto.FromCoupon(cp)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render coupon", nil)
		return
	}
	c.JSON(status, resp)
}

func abortCouponCommand(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrCouponValidation):
		abortWithFieldErrors(c, err, "Coupon validation failed")
	case errs.Is(err, commands.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
	case errs.Is(err, commands.ErrCouponCodeTaken):
		httperr.AbortWithError(c, http.StatusConflict, err, "Coupon code already exists", nil)
	case errs.Is(err, commands.ErrTypeLocked):
		httperr.AbortWithError(c, http.StatusConflict, err, "Discount type cannot change after the first redemption", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Coupon update failed", nil)
	}
}
