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
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/pkg/ptr"
	"coupon-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponValidation = errs.New("coupon validation failed")
	ErrCouponCodeTaken  = errs.New("coupon code already exists")
	ErrTypeLocked       = errs.New("discount type cannot change after redemption")
)

// CouponInput is a full coupon definition as submitted by the back office.
type CouponInput struct {
	Code        string
	Name        i18n.Text
	Description i18n.Text
	Type        string
	Value       decimal.Decimal

	MinCartValue *decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time

	UsageLimit        *int
	UsageLimitPerUser *int

	Stackable bool
	AutoApply bool
	IsActive  *bool // nil keeps the current value, true on create

	EligibleProducts   []string
	EligibleCategories []string

	BogoBuyQuantity  int
	BogoGetQuantity  int
	BogoEligibleSkus []string
}

//go:generate mockgen -destination=../../mock/commands/commands.go -package=commandsmock coupon-engine/internal/usecase/commands CouponCommands,RedemptionCommands

type CouponCommands interface {
	Create(ctx context.Context, in CouponInput) (*coupon.Coupon, error)
	// Update replaces the definition of code; the code itself never changes.
	Update(ctx context.Context, code string, in CouponInput) (*coupon.Coupon, error)
	Deactivate(ctx context.Context, code string) (*coupon.Coupon, error)
}

type couponCommandsImpl struct {
	uow   shared.UnitOfWork
	cache shared.CouponCache
	clock clock.Clock
}

func NewCouponCommands(uow shared.UnitOfWork, cache shared.CouponCache, clk clock.Clock) CouponCommands {
	return &couponCommandsImpl{uow: uow, cache: cache, clock: clk}
}

func (uc *couponCommandsImpl) Create(ctx context.Context, in CouponInput) (*coupon.Coupon, error) {
	now := uc.clock.Now().UTC()
	c := &coupon.Coupon{
		ID:        uuid.New(),
		Code:      coupon.NormalizeCode(in.Code),
		IsActive:  ptr.Deref(in.IsActive, true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(c, in)
	if fields := fieldErrors(c); len(fields) > 0 {
		return nil, errs.Mark(fields, ErrCouponValidation)
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Coupons().Create(ctx, c)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, ErrCouponCodeTaken)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "coupon created", "coupon_code", c.Code.String(), "type", c.Type.String())
	uc.invalidate(ctx, c.Code)
	return c, nil
}

func (uc *couponCommandsImpl) Update(ctx context.Context, code string, in CouponInput) (*coupon.Coupon, error) {
	if in.Code != "" && coupon.NormalizeCode(in.Code) != coupon.NormalizeCode(code) {
		return nil, errs.Mark(coupon.FieldErrors{"code": "cannot be changed"}, ErrCouponValidation)
	}

	var updated *coupon.Coupon
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Coupons().FindByCodeForUpdate(ctx, coupon.NormalizeCode(code))
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrCouponNotFound)
			}
			return err
		}

		next := *existing
		next.IsActive = ptr.Deref(in.IsActive, existing.IsActive)
		next.UpdatedAt = uc.clock.Now().UTC()

		apply(&next, in)
		fields := fieldErrors(&next)
		if len(fields) == 0 && next.UsageLimit != nil && *next.UsageLimit < existing.UsageCount {
			fields = coupon.FieldErrors{"usageLimit": "must not be below the current usage count"}
		}
		if len(fields) > 0 {
			return errs.Mark(fields, ErrCouponValidation)
		}

		if next.Type != existing.Type {
			n, cerr := tx.Redemptions().CountByCoupon(ctx, existing.ID)
			if cerr != nil {
				return cerr
			}
			if n > 0 {
				return ErrTypeLocked
			}
		}

		if err = tx.Coupons().Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "coupon updated", "coupon_code", updated.Code.String())
	uc.invalidate(ctx, updated.Code)
	return updated, nil
}

func (uc *couponCommandsImpl) Deactivate(ctx context.Context, code string) (*coupon.Coupon, error) {
	var out *coupon.Coupon
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.Coupons().FindByCodeForUpdate(ctx, coupon.NormalizeCode(code))
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrCouponNotFound)
			}
			return err
		}
		if !c.IsActive {
			out = c
			return nil
		}
		c.Deactivate(uc.clock.Now().UTC())
		if err = tx.Coupons().Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "coupon deactivated", "coupon_code", out.Code.String())
	uc.invalidate(ctx, out.Code)
	return out, nil
}

// invalidate runs after commit; a failure only delays visibility until the cache TTL.
func (uc *couponCommandsImpl) invalidate(ctx context.Context, code coupon.Code) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, code); err != nil {
		slog.WarnContext(ctx, "coupon cache invalidation failed", "coupon_code", code.String(), "error", err.Error())
	}
}

func fieldErrors(c *coupon.Coupon) coupon.FieldErrors {
	if err := c.Validate(); err != nil {
		if fields, ok := err.(coupon.FieldErrors); ok {
			return fields
		}
	}
	return nil
}

// apply copies the editable fields of in onto c; checks are left to Coupon.Validate.
func apply(c *coupon.Coupon, in CouponInput) {
	t := coupon.DiscountType(strings.ToLower(strings.TrimSpace(in.Type)))

	c.Name = in.Name
	c.Description = in.Description
	c.Type = t
	c.Value = in.Value
	c.MinCartValue = in.MinCartValue
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.UsageLimit = in.UsageLimit
	c.UsageLimitPerUser = in.UsageLimitPerUser
	c.Stackable = in.Stackable
	c.AutoApply = in.AutoApply
	c.EligibleProducts = coupon.NewSet(in.EligibleProducts...)
	c.EligibleCategories = coupon.NewSet(in.EligibleCategories...)
	c.BogoBuyQuantity = 0
	c.BogoGetQuantity = 0
	c.BogoEligibleSkus = coupon.NewSet()
	if t == coupon.TypeBogo {
		c.BogoBuyQuantity = in.BogoBuyQuantity
		c.BogoGetQuantity = in.BogoGetQuantity
		c.BogoEligibleSkus = coupon.NewSet(in.BogoEligibleSkus...)
	}
}
