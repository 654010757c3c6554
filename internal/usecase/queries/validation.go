package queries

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/pkg/clock"
	"coupon-engine/internal/pkg/config"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/pkg/i18n"
	"coupon-engine/internal/usecase/shared"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidCart     = errs.New("invalid cart")
	ErrValidationAbort = errs.New("coupon validation aborted")
)

//go:generate mockgen -destination=../../mock/queries/validation.go -package=queriesmock coupon-engine/internal/usecase/queries ValidationQueries,CouponQueries

// ValidationQueries is the read-only side of the engine. Nothing here mutates
// usage counters; identical input produces identical output.
type ValidationQueries interface {
	Validate(ctx context.Context, in ValidateInput) (*ValidationResult, error)
	ListAutoApplyCandidates(ctx context.Context, in CartInput) ([]*AutoApplyCandidate, error)
	Reconcile(ctx context.Context, in ReconcileInput) (*ValidationResult, error)
}

type validationQueriesImpl struct {
	coupons shared.CouponReadStore
	usage   shared.UsageReader
	catalog shared.CategoryLookup
	clock   clock.Clock
	cfg     config.CouponConfig
}

func NewValidationQueries(coupons shared.CouponReadStore, usage shared.UsageReader, catalog shared.CategoryLookup, clk clock.Clock, cfg config.Config) ValidationQueries {
	return &validationQueriesImpl{
		coupons: coupons,
		usage:   usage,
		catalog: catalog,
		clock:   clk,
		cfg:     cfg.Coupon,
	}
}

// candidate is a looked-up coupon with its live usage; c is nil when the code is unknown.
type candidate struct {
	code  coupon.Code
	c     *coupon.Coupon
	usage coupon.UsageSnapshot
}

func (q *validationQueriesImpl) Validate(ctx context.Context, in ValidateInput) (*ValidationResult, error) {
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	locale, currency := q.presentation(in.CartInput)
	code := coupon.NormalizeCode(in.Code)

	items, err := coupon.ParseItems(in.Items)
	if err != nil {
		return reject(coupon.Reject(code, coupon.ReasonParseError), locale, currency), nil
	}
	if code == "" {
		return reject(coupon.Reject(code, coupon.ReasonNotFound), locale, currency), nil
	}

	existing, overflow := q.limitCodes(dedupeCodes(in.ExistingCodes, code))
	codes := append([]coupon.Code{code}, existing...)

	cart, loaded, err := q.load(ctx, items, codes, in.UserID)
	if err != nil {
		return nil, err
	}

	target := loaded[0]
	if target.c == nil {
		return reject(coupon.Reject(code, coupon.ReasonNotFound), locale, currency), nil
	}

	now := q.clock.Now()
	kept, removed := q.revalidate(loaded[1:], cart, now, in.UserID, currency)

	if rej := coupon.Evaluate(target.c, coupon.EligibilityInput{
		Cart:     cart,
		Now:      now,
		UserID:   in.UserID,
		Usage:    target.usage,
		Applied:  codesOf(kept),
		Currency: currency,
	}); rej != nil {
		return reject(rej, locale, currency), nil
	}
	if !coupon.CanStack(kept, target.c) {
		return reject(coupon.Reject(code, coupon.ReasonNotStackable), locale, currency), nil
	}

	applied := append(kept, target.c)
	res := success(coupon.ApplyStack(applied, cart), applied, currency, locale)
	res.Code = target.c.Code
	res.Label = coupon.Label(target.c, currency)
	res.Messages = coupon.AppliedMessage(target.c)
	res.Removed = append(removed, overflow...)
	return res, nil
}

func (q *validationQueriesImpl) ListAutoApplyCandidates(ctx context.Context, in CartInput) ([]*AutoApplyCandidate, error) {
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	_, currency := q.presentation(in)

	items, err := coupon.ParseItems(in.Items)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCart)
	}

	cart, autos, err := q.loadAutoApply(ctx, items, in.UserID)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	out := make([]*AutoApplyCandidate, 0, len(autos))
	for _, a := range autos {
		if rej := coupon.Evaluate(a.c, coupon.EligibilityInput{Cart: cart, Now: now, UserID: in.UserID, Usage: a.usage}); rej != nil {
			continue
		}
		r := coupon.Compute(a.c, cart)
		if !r.DiscountAmount.IsPositive() {
			continue
		}
		out = append(out, &AutoApplyCandidate{
			Code:           a.c.Code,
			Name:           a.c.Name,
			Type:           a.c.Type,
			Stackable:      a.c.Stackable,
			Label:          coupon.Label(a.c, currency),
			DiscountAmount: r.DiscountAmount,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DiscountAmount.Equal(out[j].DiscountAmount) {
			return out[i].DiscountAmount.GreaterThan(out[j].DiscountAmount)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// Reconcile recomputes the applied set after a cart mutation: manual codes that stopped
// qualifying are dropped, auto-apply coupons are added or dropped as the cart now allows.
func (q *validationQueriesImpl) Reconcile(ctx context.Context, in ReconcileInput) (*ValidationResult, error) {
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	locale, currency := q.presentation(in.CartInput)

	items, err := coupon.ParseItems(in.Items)
	if err != nil {
		return reject(coupon.Reject("", coupon.ReasonParseError), locale, currency), nil
	}

	codes, overflow := q.limitCodes(dedupeCodes(in.AppliedCodes, ""))

	var (
		cart   coupon.Cart
		loaded []candidate
		autos  []candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var lerr error
		cart, loaded, lerr = q.load(gctx, items, codes, in.UserID)
		return lerr
	})
	g.Go(func() error {
		var lerr error
		_, autos, lerr = q.loadAutoApply(gctx, nil, in.UserID)
		return lerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := q.clock.Now()
	kept, removed := q.revalidate(loaded, cart, now, in.UserID, currency)

	present := make(map[coupon.Code]struct{}, len(codes))
	for _, c := range codes {
		present[c] = struct{}{}
	}

	sorted := make([]*coupon.Coupon, 0, len(autos))
	usageByCode := make(map[coupon.Code]coupon.UsageSnapshot, len(autos))
	for _, a := range autos {
		if _, ok := present[a.c.Code]; ok {
			continue
		}
		sorted = append(sorted, a.c)
		usageByCode[a.c.Code] = a.usage
	}
	for _, c := range coupon.StackOrder(sorted) {
		rej := coupon.Evaluate(c, coupon.EligibilityInput{
			Cart:    cart,
			Now:     now,
			UserID:  in.UserID,
			Usage:   usageByCode[c.Code],
			Applied: codesOf(kept),
		})
		if rej != nil || !coupon.CanStack(kept, c) {
			continue
		}
		if !coupon.Compute(c, cart).DiscountAmount.IsPositive() {
			continue
		}
		kept = append(kept, c)
	}

	res := success(coupon.ApplyStack(kept, cart), kept, currency, locale)
	res.Removed = append(removed, overflow...)
	res.Messages = i18n.Text{}
	return res, nil
}

// revalidate re-runs eligibility for codes already on the cart. Each code is checked
// against the others, so a non-stackable code sharing the cart is dropped.
func (q *validationQueriesImpl) revalidate(loaded []candidate, cart coupon.Cart, now time.Time, userID, currency string) ([]*coupon.Coupon, []RemovedCoupon) {
	all := make([]coupon.Code, len(loaded))
	for i, l := range loaded {
		all[i] = l.code
	}

	var kept []*coupon.Coupon
	removed := []RemovedCoupon{}
	for i, l := range loaded {
		if l.c == nil {
			rej := coupon.Reject(l.code, coupon.ReasonNotFound)
			removed = append(removed, RemovedCoupon{Code: l.code, Reason: rej.Reason, Messages: rej.Messages()})
			continue
		}
		others := make([]coupon.Code, 0, len(all)-1)
		others = append(others, all[:i]...)
		others = append(others, all[i+1:]...)

		rej := coupon.Evaluate(l.c, coupon.EligibilityInput{
			Cart:     cart,
			Now:      now,
			UserID:   userID,
			Usage:    l.usage,
			Applied:  others,
			Currency: currency,
		})
		if rej != nil {
			removed = append(removed, RemovedCoupon{Code: l.code, AutoApply: l.c.AutoApply, Reason: rej.Reason, Messages: rej.Messages()})
			continue
		}
		kept = append(kept, l.c)
	}
	return kept, removed
}

// load resolves categories and looks up every code with its live usage, concurrently.
// The returned candidates keep the order of codes.
func (q *validationQueriesImpl) load(ctx context.Context, items []coupon.Item, codes []coupon.Code, userID string) (coupon.Cart, []candidate, error) {
	out := make([]candidate, len(codes))
	var categories map[string][]string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.concurrency())

	g.Go(func() error {
		cats, err := q.lookupCategories(gctx, items)
		if err != nil {
			return err
		}
		categories = cats
		return nil
	})
	for i, code := range codes {
		g.Go(func() error {
			c, err := q.coupons.FindByCode(gctx, code)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					out[i] = candidate{code: code}
					return nil
				}
				return err
			}
			usage, err := q.usage.Usage(gctx, c.ID, userID)
			if err != nil {
				return err
			}
			out[i] = candidate{code: code, c: c, usage: usage}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "coupon lookup failed", "codes", len(codes), "error", err)
		return coupon.Cart{}, nil, errs.Mark(err, ErrValidationAbort)
	}
	return coupon.NewCart(items, categories), out, nil
}

func (q *validationQueriesImpl) loadAutoApply(ctx context.Context, items []coupon.Item, userID string) (coupon.Cart, []candidate, error) {
	list, err := q.coupons.ListAutoApply(ctx)
	if err != nil {
		return coupon.Cart{}, nil, errs.Mark(err, ErrValidationAbort)
	}
	codes := make([]coupon.Code, len(list))
	for i, c := range list {
		codes[i] = c.Code
	}
	cart, loaded, err := q.load(ctx, items, codes, userID)
	if err != nil {
		return coupon.Cart{}, nil, err
	}
	out := loaded[:0]
	for _, l := range loaded {
		if l.c != nil {
			out = append(out, l)
		}
	}
	return cart, out, nil
}

func (q *validationQueriesImpl) lookupCategories(ctx context.Context, items []coupon.Item) (map[string][]string, error) {
	if len(items) == 0 {
		return map[string][]string{}, nil
	}
	skus := coupon.NewCart(items, nil).SKUs()
	return q.catalog.CategoriesBySKU(ctx, skus)
}

func (q *validationQueriesImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.cfg.ValidationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.cfg.ValidationTimeout)
}

func (q *validationQueriesImpl) presentation(in CartInput) (i18n.Locale, string) {
	fallback := i18n.ParseLocale(q.cfg.DefaultLocale, i18n.LocaleEN)
	currency := in.Currency
	if currency == "" {
		currency = q.cfg.DefaultCurrency
	}
	return i18n.ParseLocale(in.Locale, fallback), currency
}

func (q *validationQueriesImpl) concurrency() int {
	if q.cfg.LookupConcurrency <= 0 {
		return 4
	}
	return q.cfg.LookupConcurrency
}

// limitCodes caps how many applied codes are looked up. Codes past the cap are
// reported as removed so the caller drops them from the cart.
func (q *validationQueriesImpl) limitCodes(codes []coupon.Code) ([]coupon.Code, []RemovedCoupon) {
	if q.cfg.MaxAppliedCodes <= 0 || len(codes) <= q.cfg.MaxAppliedCodes {
		return codes, nil
	}
	dropped := make([]RemovedCoupon, 0, len(codes)-q.cfg.MaxAppliedCodes)
	for _, c := range codes[q.cfg.MaxAppliedCodes:] {
		rej := coupon.Reject(c, coupon.ReasonNotStackable)
		dropped = append(dropped, RemovedCoupon{Code: c, Reason: rej.Reason, Messages: rej.Messages()})
	}
	return codes[:q.cfg.MaxAppliedCodes], dropped
}

// dedupeCodes normalizes codes, drops blanks and duplicates, and skips exclude.
func dedupeCodes(raw []string, exclude coupon.Code) []coupon.Code {
	seen := make(map[coupon.Code]struct{}, len(raw))
	out := make([]coupon.Code, 0, len(raw))
	for _, r := range raw {
		c := coupon.NormalizeCode(r)
		if c == "" || c == exclude {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func codesOf(cs []*coupon.Coupon) []coupon.Code {
	out := make([]coupon.Code, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}

func reject(rej *coupon.Rejection, locale i18n.Locale, currency string) *ValidationResult {
	return &ValidationResult{
		Success:    false,
		Locale:     locale,
		Currency:   currency,
		Code:       rej.Code,
		ReasonCode: rej.Reason,
		Messages:   rej.Messages(),
	}
}

func success(stack coupon.StackResult, applied []*coupon.Coupon, currency string, locale i18n.Locale) *ValidationResult {
	byCode := make(map[coupon.Code]*coupon.Coupon, len(applied))
	for _, c := range applied {
		byCode[c.Code] = c
	}
	res := &ValidationResult{
		Success:         true,
		Locale:          locale,
		Currency:        currency,
		Subtotal:        stack.Subtotal,
		DiscountAmount:  stack.DiscountAmount,
		NewSubtotal:     stack.NewSubtotal,
		DiscountedItems: stack.DiscountedItems,
		Applied:         make([]AppliedCoupon, 0, len(stack.Results)),
		Removed:         []RemovedCoupon{},
	}
	for _, r := range stack.Results {
		a := AppliedCoupon{
			Code:           r.Code,
			Type:           r.Type,
			DiscountAmount: r.DiscountAmount,
		}
		if c, ok := byCode[r.Code]; ok {
			a.AutoApply = c.AutoApply
			a.Stackable = c.Stackable
			a.Label = coupon.Label(c, currency)
		}
		res.Applied = append(res.Applied, a)
	}
	return res
}
