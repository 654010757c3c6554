package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type userKey struct {
	couponID uuid.UUID
	userID   string
}

type orderKey struct {
	couponID uuid.UUID
	order    string
}

// Store keeps every port of the engine in process memory. It serves single-instance
// deployments and tests; a transaction holds the write lock and is undone from a
// snapshot on error.
type Store struct {
	mu          sync.RWMutex
	coupons     map[coupon.Code]*coupon.Coupon
	userUsage   map[userKey]int
	redemptions []*coupon.Redemption
	orders      map[orderKey]struct{}
	categories  map[string][]string
}

func New() *Store {
	return &Store{
		coupons:    make(map[coupon.Code]*coupon.Coupon),
		userUsage:  make(map[userKey]int),
		orders:     make(map[orderKey]struct{}),
		categories: make(map[string][]string),
	}
}

// SetCategories replaces the category membership of sku.
func (s *Store) SetCategories(sku string, categories ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[sku] = append([]string(nil), categories...)
}

// -----------------------------------------------------------------------------
// Read side
// -----------------------------------------------------------------------------

func (s *Store) FindByCode(_ context.Context, code coupon.Code) (*coupon.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(code)
}

func (s *Store) ListAutoApply(_ context.Context) ([]*coupon.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*coupon.Coupon
	for _, c := range s.coupons {
		if c.AutoApply && c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *Store) List(_ context.Context, filter shared.CouponFilter) ([]*coupon.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*coupon.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		if filter.Active != nil && c.IsActive != *filter.Active {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.AutoApply != nil && c.AutoApply != *filter.AutoApply {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Code < all[j].Code
	})

	if filter.Offset >= len(all) {
		return []*coupon.Coupon{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (s *Store) Usage(_ context.Context, couponID uuid.UUID, userID string) (coupon.UsageSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.byIDLocked(couponID)
	if c == nil {
		return coupon.UsageSnapshot{}, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	snap := coupon.UsageSnapshot{UsageCount: c.UsageCount}
	if userID != "" {
		snap.UserRedemptions = s.userUsage[userKey{couponID, userID}]
	}
	return snap, nil
}

func (s *Store) FirstPage(_ context.Context, couponID uuid.UUID, limit int) ([]*coupon.Redemption, error) {
	return s.page(couponID, nil, uuid.Nil, limit), nil
}

func (s *Store) After(_ context.Context, couponID uuid.UUID, lastRedeemedAt time.Time, lastID uuid.UUID, limit int) ([]*coupon.Redemption, error) {
	return s.page(couponID, &lastRedeemedAt, lastID, limit), nil
}

func (s *Store) page(couponID uuid.UUID, after *time.Time, afterID uuid.UUID, limit int) []*coupon.Redemption {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*coupon.Redemption
	for _, r := range s.redemptions {
		if r.CouponID == couponID {
			cp := *r
			rows = append(rows, &cp)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i], rows[j]) })

	out := []*coupon.Redemption{}
	for _, r := range rows {
		if after != nil && !older(r, *after, afterID) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Store) CategoriesBySKU(_ context.Context, skus []string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(skus))
	for _, sku := range skus {
		if cats, ok := s.categories[sku]; ok {
			out[sku] = append([]string(nil), cats...)
		}
	}
	return out, nil
}

// Invalidate satisfies shared.CouponCache; there is nothing to drop.
func (s *Store) Invalidate(context.Context, coupon.Code) error { return nil }

// -----------------------------------------------------------------------------
// Write side
// -----------------------------------------------------------------------------

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshotLocked()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

type snapshot struct {
	coupons     map[coupon.Code]*coupon.Coupon
	userUsage   map[userKey]int
	redemptions []*coupon.Redemption
	orders      map[orderKey]struct{}
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{
		coupons:     make(map[coupon.Code]*coupon.Coupon, len(s.coupons)),
		userUsage:   make(map[userKey]int, len(s.userUsage)),
		redemptions: append([]*coupon.Redemption(nil), s.redemptions...),
		orders:      make(map[orderKey]struct{}, len(s.orders)),
	}
	for k, v := range s.coupons {
		cp := *v
		snap.coupons[k] = &cp
	}
	for k, v := range s.userUsage {
		snap.userUsage[k] = v
	}
	for k := range s.orders {
		snap.orders[k] = struct{}{}
	}
	return snap
}

func (s *Store) restoreLocked(snap snapshot) {
	s.coupons = snap.coupons
	s.userUsage = snap.userUsage
	s.redemptions = snap.redemptions
	s.orders = snap.orders
}

func (s *Store) findLocked(code coupon.Code) (*coupon.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) byIDLocked(id uuid.UUID) *coupon.Coupon {
	for _, c := range s.coupons {
		if c.ID == id {
			return c
		}
	}
	return nil
}

type memTx struct {
	s *Store
}

func (t *memTx) Coupons() shared.CouponRepository         { return couponRepo{t.s} }
func (t *memTx) Usage() shared.UsageRepository            { return usageRepo{t.s} }
func (t *memTx) Redemptions() shared.RedemptionRepository { return redemptionRepo{t.s} }

type couponRepo struct{ s *Store }

func (r couponRepo) FindByCode(_ context.Context, code coupon.Code) (*coupon.Coupon, error) {
	return r.s.findLocked(code)
}

// FindByCodeForUpdate needs no extra locking: the transaction already holds the write lock.
func (r couponRepo) FindByCodeForUpdate(_ context.Context, code coupon.Code) (*coupon.Coupon, error) {
	return r.s.findLocked(code)
}

func (r couponRepo) Create(_ context.Context, c *coupon.Coupon) error {
	if _, exists := r.s.coupons[c.Code]; exists {
		return infra.WrapRepoErr("coupon code already exists", nil, infra.KindDuplicateKey)
	}
	cp := *c
	cp.UsageCount = 0
	r.s.coupons[c.Code] = &cp
	return nil
}

func (r couponRepo) Update(_ context.Context, c *coupon.Coupon) error {
	cur, ok := r.s.coupons[c.Code]
	if !ok || cur.ID != c.ID {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	cp := *c
	cp.UsageCount = cur.UsageCount
	cp.CreatedAt = cur.CreatedAt
	r.s.coupons[c.Code] = &cp
	return nil
}

type usageRepo struct{ s *Store }

func (r usageRepo) IncrementUsage(_ context.Context, couponID uuid.UUID) (int, error) {
	c := r.s.byIDLocked(couponID)
	if c == nil {
		return 0, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return 0, errs.Mark(errs.New("usage guard matched no rows"), shared.ErrUsageLimitExhausted)
	}
	c.UsageCount++
	return c.UsageCount, nil
}

func (r usageRepo) IncrementUserUsage(_ context.Context, couponID uuid.UUID, userID string, limit *int) (int, error) {
	k := userKey{couponID, userID}
	n := r.s.userUsage[k]
	if limit != nil && n >= *limit {
		return 0, errs.Mark(errs.New("per-user guard matched no rows"), shared.ErrUserLimitExhausted)
	}
	r.s.userUsage[k] = n + 1
	return n + 1, nil
}

type redemptionRepo struct{ s *Store }

func (r redemptionRepo) Insert(_ context.Context, red *coupon.Redemption) error {
	k := orderKey{red.CouponID, red.OrderReference}
	if _, exists := r.s.orders[k]; exists {
		return infra.WrapRepoErr("redemption already recorded", nil, infra.KindDuplicateKey)
	}
	r.s.orders[k] = struct{}{}
	cp := *red
	r.s.redemptions = append(r.s.redemptions, &cp)
	return nil
}

func (r redemptionRepo) CountByCoupon(_ context.Context, couponID uuid.UUID) (int, error) {
	n := 0
	for _, red := range r.s.redemptions {
		if red.CouponID == couponID {
			n++
		}
	}
	return n, nil
}

func newer(a, b *coupon.Redemption) bool {
	if !a.RedeemedAt.Equal(b.RedeemedAt) {
		return a.RedeemedAt.After(b.RedeemedAt)
	}
	return a.ID.String() > b.ID.String()
}

// older reports whether r sorts after the (at, id) cursor in newest-first order.
func older(r *coupon.Redemption, at time.Time, id uuid.UUID) bool {
	if !r.RedeemedAt.Equal(at) {
		return r.RedeemedAt.Before(at)
	}
	return r.ID.String() < id.String()
}
