package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/pkg/clock"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound      = errs.New("coupon not found")
	ErrUsageLimitReached   = errs.New("coupon usage limit reached")
	ErrUserLimitReached    = errs.New("per-user usage limit reached")
	ErrRedemptionExists    = errs.New("redemption already recorded for order")
	ErrInvalidRedemption   = errs.New("invalid redemption")
	ErrRedemptionNotStored = errs.New("failed to record redemption")
)

const maxOrderReferenceLen = 128

type RecordRedemptionRequest struct {
	Code           string
	OrderReference string
	UserID         string // empty for guest checkouts
	DiscountAmount decimal.Decimal
}

type RecordRedemptionResult struct {
	Redemption      *coupon.Redemption
	UsageCount      int
	UserRedemptions int
}

type RedemptionCommands interface {
	RecordRedemption(ctx context.Context, req RecordRedemptionRequest) (*RecordRedemptionResult, error)
}

type redemptionCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewRedemptionCommands(uow shared.UnitOfWork, clk clock.Clock) RedemptionCommands {
	return &redemptionCommandsImpl{uow: uow, clock: clk}
}

// RecordRedemption is the only operation that moves usage counters. It runs in its own
// transaction; callers that own an order transaction use RecordRedemptionTx instead.
func (r *redemptionCommandsImpl) RecordRedemption(ctx context.Context, req RecordRedemptionRequest) (*RecordRedemptionResult, error) {
	if err := validateRedemption(req); err != nil {
		return nil, err
	}

	var result *RecordRedemptionResult
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, txErr := RecordRedemptionTx(ctx, tx, req, r.clock)
		if txErr != nil {
			return txErr
		}
		result = res
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "redemption rejected",
			"coupon_code", coupon.NormalizeCode(req.Code).String(),
			"order_reference", req.OrderReference,
			"error", err.Error())
		return nil, err
	}

	slog.InfoContext(ctx, "redemption recorded",
		"coupon_code", result.Redemption.CouponCode.String(),
		"order_reference", result.Redemption.OrderReference,
		"usage_count", result.UsageCount)
	return result, nil
}

// RecordRedemptionTx writes the ledger entry and both conditional increments on tx.
// Any error leaves the caller's transaction to roll back everything.
func RecordRedemptionTx(ctx context.Context, tx shared.Tx, req RecordRedemptionRequest, clk clock.Clock) (*RecordRedemptionResult, error) {
	c, err := tx.Coupons().FindByCode(ctx, coupon.NormalizeCode(req.Code))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrCouponNotFound)
		}
		return nil, errs.Mark(err, ErrRedemptionNotStored)
	}

	red := &coupon.Redemption{
		ID:             uuid.New(),
		CouponID:       c.ID,
		CouponCode:     c.Code,
		UserID:         strings.TrimSpace(req.UserID),
		OrderReference: strings.TrimSpace(req.OrderReference),
		DiscountAmount: coupon.RoundMoney(req.DiscountAmount),
		RedeemedAt:     clk.Now().UTC().Truncate(time.Microsecond),
	}

	if err = tx.Redemptions().Insert(ctx, red); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, ErrRedemptionExists)
		}
		return nil, errs.Mark(err, ErrRedemptionNotStored)
	}

	count, err := tx.Usage().IncrementUsage(ctx, c.ID)
	if err != nil {
		if errs.Is(err, shared.ErrUsageLimitExhausted) {
			return nil, errs.Mark(err, ErrUsageLimitReached)
		}
		return nil, errs.Mark(err, ErrRedemptionNotStored)
	}

	res := &RecordRedemptionResult{Redemption: red, UsageCount: count}
	if red.UserID == "" {
		return res, nil
	}

	userCount, err := tx.Usage().IncrementUserUsage(ctx, c.ID, red.UserID, c.UsageLimitPerUser)
	if err != nil {
		if errs.Is(err, shared.ErrUserLimitExhausted) {
			return nil, errs.Mark(err, ErrUserLimitReached)
		}
		return nil, errs.Mark(err, ErrRedemptionNotStored)
	}
	res.UserRedemptions = userCount
	return res, nil
}

func validateRedemption(req RecordRedemptionRequest) error {
	fields := coupon.FieldErrors{}
	if coupon.NormalizeCode(req.Code) == "" {
		fields["code"] = "is required"
	}
	ref := strings.TrimSpace(req.OrderReference)
	switch {
	case ref == "":
		fields["orderReference"] = "is required"
	case len(ref) > maxOrderReferenceLen:
		fields["orderReference"] = "must be at most 128 characters"
	}
	switch {
	case req.DiscountAmount.IsNegative():
		fields["discountAmount"] = "must not be negative"
	case !req.DiscountAmount.Equal(coupon.RoundMoney(req.DiscountAmount)):
		fields["discountAmount"] = "must have at most 2 decimal places"
	}
	if len(fields) > 0 {
		return errs.Mark(fields, ErrInvalidRedemption)
	}
	return nil
}
