package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/pkg/errs"
	"coupon-engine/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	autoApplyKey = "coupons:auto-apply"
	// generationKey is bumped by every invalidation. A load only writes back if the
	// generation it saw before reading the origin is still current.
	generationKey = "coupons:generation"

	loadTimeout = 5 * time.Second
)

var errStaleLoad = errors.New("coupon cache load raced an invalidation")

// CouponStore is a read-through Redis cache in front of a CouponReadStore.
// Only definitions are cached; usage counters are always read live from the ledger.
// Redis failures degrade to direct store reads.
type CouponStore struct {
	next   shared.CouponReadStore
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

func NewCouponStore(next shared.CouponReadStore, client redis.UniversalClient, ttl time.Duration, prefix string) *CouponStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CouponStore{next: next, client: client, ttl: ttl, prefix: prefix}
}

func (s *CouponStore) FindByCode(ctx context.Context, code coupon.Code) (*coupon.Coupon, error) {
	key := s.couponKey(code)

	var cached coupon.Coupon
	if s.get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		gen, ok := s.generation(ctx)
		c, err := s.next.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if ok {
			s.set(ctx, key, gen, stripUsage(c))
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	// callers may mutate the result; never hand out the shared value
	c := *v.(*coupon.Coupon)
	return &c, nil
}

func (s *CouponStore) ListAutoApply(ctx context.Context) ([]*coupon.Coupon, error) {
	key := s.prefix + autoApplyKey

	var cached []*coupon.Coupon
	if s.get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		gen, ok := s.generation(ctx)
		list, err := s.next.ListAutoApply(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			stripped := make([]*coupon.Coupon, len(list))
			for i, c := range list {
				stripped[i] = stripUsage(c)
			}
			s.set(ctx, key, gen, stripped)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	src := v.([]*coupon.Coupon)
	out := make([]*coupon.Coupon, len(src))
	for i, c := range src {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

// List is an admin listing and always goes to the store.
func (s *CouponStore) List(ctx context.Context, filter shared.CouponFilter) ([]*coupon.Coupon, error) {
	return s.next.List(ctx, filter)
}

// Invalidate drops the coupon and the auto-apply list, which may contain it, and
// bumps the generation so loads already in flight do not write the old row back.
func (s *CouponStore) Invalidate(ctx context.Context, code coupon.Code) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, s.prefix+generationKey)
		pipe.Del(ctx, s.couponKey(code), s.prefix+autoApplyKey)
		return nil
	})
	if err != nil {
		return errs.Wrap(err, "redis invalidate failed")
	}
	return nil
}

// generation reads the current invalidation generation. ok is false when Redis
// cannot be read, in which case the load must not be cached.
func (s *CouponStore) generation(ctx context.Context) (string, bool) {
	gen, err := s.client.Get(ctx, s.prefix+generationKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", true
	case err != nil:
		slog.WarnContext(ctx, "coupon cache generation read failed", "error", err.Error())
		return "", false
	}
	return gen, true
}

func (s *CouponStore) get(ctx context.Context, key string, dst any) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "coupon cache read failed", "key", key, "error", err.Error())
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.WarnContext(ctx, "coupon cache entry unreadable", "key", key, "error", err.Error())
		return false
	}
	return true
}

// set writes v under key unless an invalidation happened since gen was read.
func (s *CouponStore) set(ctx context.Context, key, gen string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "coupon cache encode failed", "key", key, "error", err.Error())
		return
	}
	// jitter spreads expiry of entries written together
	ttl := s.ttl + time.Duration(rand.Int64N(int64(s.ttl/10)+1))
	genKey := s.prefix + generationKey
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		slog.DebugContext(ctx, "coupon cache write skipped after invalidation", "key", key)
	default:
		slog.WarnContext(ctx, "coupon cache write failed", "key", key, "error", err.Error())
	}
}

func (s *CouponStore) couponKey(code coupon.Code) string {
	return s.prefix + "coupon:" + code.String()
}

func stripUsage(c *coupon.Coupon) *coupon.Coupon {
	cp := *c
	cp.UsageCount = 0
	return &cp
}

// Nop is used when Redis is disabled.
type Nop struct{}

func (Nop) Invalidate(context.Context, coupon.Code) error { return nil }
