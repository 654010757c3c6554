package api

import (
	"errors"
	"log/slog"
	"net/http"

	"coupon-engine/internal/domain/coupon"
	reqdto "coupon-engine/internal/handler/dto/request"
	resdto "coupon-engine/internal/handler/dto/response"
	"coupon-engine/internal/handler/httperr"
	"coupon-engine/internal/handler/middleware"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	cmds commands.RedemptionCommands
}

func NewRedemptionHandler(cmds commands.RedemptionCommands) *RedemptionHandler {
	return &RedemptionHandler{cmds: cmds}
}

// @Summary Record redemption
// @Description Record a coupon redemption for a completed order and consume one use. Requires a service or admin token.
// @Security BearerAuth
// @Tags redemptions
// @Accept json
// @Produce json
// @Param request body reqdto.RecordRedemptionRequest true "Redemption"
// @Success 201 {object} resdto.RedemptionResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.RedemptionRejectedResponse
// @Failure 422 {object} httperr.Response
// @Router /api/redemptions [post]
func (h *RedemptionHandler) Record(c *gin.Context) {
	var req reqdto.RecordRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	callerID, _ := middleware.GetUserID(c)
	result, err := h.cmds.RecordRedemption(c.Request.Context(), req.ToCommand())
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidRedemption):
			abortWithFieldErrors(c, err, "Invalid redemption")
		case errs.Is(err, commands.ErrCouponNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
		case errs.Is(err, commands.ErrUsageLimitReached):
			respondLimitReached(c, coupon.ReasonUsageLimitReached)
		case errs.Is(err, commands.ErrUserLimitReached):
			respondLimitReached(c, coupon.ReasonUserLimitReached)
		case errs.Is(err, commands.ErrRedemptionExists):
			httperr.AbortWithError(c, http.StatusConflict, err, "Redemption already recorded for this order", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to record redemption", nil)
		}
		return
	}

	slog.InfoContext(c.Request.Context(), "redemption recorded by caller",
		"caller_id", callerID,
		"order_reference", result.Redemption.OrderReference)
	c.JSON(http.StatusCreated, resdto.FromRecordRedemptionResult(result))
}

// respondLimitReached tells the checkout to re-run validation; the order must not
// be charged with the discount.
func respondLimitReached(c *gin.Context, reason coupon.ReasonCode) {
	msgs := coupon.Reject("", reason).Messages()
	locale := i18n.ParseLocale(c.GetHeader("Accept-Language"), i18n.LocaleEN)
	c.JSON(http.StatusConflict, resdto.RedemptionRejectedResponse{
		Success:    false,
		ReasonCode: reason.String(),
		Message:    msgs.In(locale),
		Messages:   msgs,
		Retryable:  true,
	})
}

type fieldErrorDetail struct {
	Fields coupon.FieldErrors `json:"fields"`
}

func abortWithFieldErrors(c *gin.Context, err error, msg string) {
	var fields coupon.FieldErrors
	if errors.As(err, &fields) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, msg, fieldErrorDetail{Fields: fields})
		return
	}
	httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, msg, nil)
}
