//go:build unit

package cache_test

import (
	"context"
	"testing"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/cache"
	sharedmock "coupon-engine/internal/mock/shared"
	"coupon-engine/internal/testutil/builder"
	"coupon-engine/internal/usecase/shared"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const prefix = "test:"

type CouponCacheTestSuite struct {
	suite.Suite
	ctx    context.Context
	mr     *miniredis.Miniredis
	origin *sharedmock.MockCouponReadStore
	store  *cache.CouponStore
}

func (s *CouponCacheTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.origin = sharedmock.NewMockCouponReadStore(gomock.NewController(s.T()))
	s.store = cache.NewCouponStore(s.origin, client, time.Minute, prefix)
}

func TestCouponCacheSuite(t *testing.T) {
	suite.Run(t, new(CouponCacheTestSuite))
}

func (s *CouponCacheTestSuite) TestFindByCode_ReadThrough() {
	c := builder.NewCouponBuilder().WithCategories("apparel").WithUsageLimit(10).Build()
	c.UsageCount = 7
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).Return(c, nil).Times(1)

	first, err := s.store.FindByCode(s.ctx, "SAVE10")
	s.Require().NoError(err)
	s.Equal(7, first.UsageCount, "miss returns the origin value as is")
	s.True(s.mr.Exists(prefix + "coupon:SAVE10"))

	second, err := s.store.FindByCode(s.ctx, "SAVE10")
	s.Require().NoError(err)
	s.Equal(c.ID, second.ID)
	s.True(c.Value.Equal(second.Value))
	s.True(second.EligibleCategories.Has("apparel"))
	s.Zero(second.UsageCount, "usage is never served from cache")

	ttl := s.mr.TTL(prefix + "coupon:SAVE10")
	s.GreaterOrEqual(ttl, time.Minute)
	s.LessOrEqual(ttl, time.Minute+6*time.Second)
}

func (s *CouponCacheTestSuite) TestFindByCode_NotFoundIsNotCached() {
	notFound := infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("NOPE")).Return(nil, notFound).Times(2)

	for range 2 {
		_, err := s.store.FindByCode(s.ctx, "NOPE")
		s.True(infra.IsKind(err, infra.KindNotFound))
	}
	s.False(s.mr.Exists(prefix + "coupon:NOPE"))
}

func (s *CouponCacheTestSuite) TestFindByCode_FailsOpen() {
	c := builder.NewCouponBuilder().Build()
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).Return(c, nil).Times(2)
	s.mr.SetError("ERR cache unavailable")

	for range 2 {
		got, err := s.store.FindByCode(s.ctx, "SAVE10")
		s.Require().NoError(err)
		s.Equal(c.ID, got.ID)
	}
}

func (s *CouponCacheTestSuite) TestFindByCode_UnreadableEntryFallsBack() {
	c := builder.NewCouponBuilder().Build()
	s.Require().NoError(s.mr.Set(prefix+"coupon:SAVE10", "{not json"))
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).Return(c, nil).Times(1)

	got, err := s.store.FindByCode(s.ctx, "SAVE10")

	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
}

func (s *CouponCacheTestSuite) TestInvalidate() {
	a := builder.NewCouponBuilder().WithCode("AUTO").AutoApply().Build()
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("AUTO")).Return(a, nil).Times(2)
	s.origin.EXPECT().ListAutoApply(gomock.Any()).Return([]*coupon.Coupon{a}, nil).Times(2)

	_, err := s.store.FindByCode(s.ctx, "AUTO")
	s.Require().NoError(err)
	list, err := s.store.ListAutoApply(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Require().NoError(s.store.Invalidate(s.ctx, "AUTO"))
	s.False(s.mr.Exists(prefix + "coupon:AUTO"))
	s.False(s.mr.Exists(prefix + "coupons:auto-apply"))

	_, err = s.store.FindByCode(s.ctx, "AUTO")
	s.Require().NoError(err)
	_, err = s.store.ListAutoApply(s.ctx)
	s.Require().NoError(err)
}

func (s *CouponCacheTestSuite) TestFindByCode_LoadRacingInvalidateIsNotCached() {
	old := builder.NewCouponBuilder().Percent("10").Build()
	updated := builder.NewCouponBuilder().Percent("25").Build()
	gomock.InOrder(
		s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).
			DoAndReturn(func(ctx context.Context, _ coupon.Code) (*coupon.Coupon, error) {
				// an admin update commits and invalidates while this read is in flight
				s.Require().NoError(s.store.Invalidate(ctx, "SAVE10"))
				return old, nil
			}),
		s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).Return(updated, nil),
	)

	first, err := s.store.FindByCode(s.ctx, "SAVE10")
	s.Require().NoError(err)
	s.True(first.Value.Equal(old.Value))
	s.False(s.mr.Exists(prefix+"coupon:SAVE10"), "the pre-invalidation row must not be written back")

	second, err := s.store.FindByCode(s.ctx, "SAVE10")
	s.Require().NoError(err)
	s.True(second.Value.Equal(updated.Value))
	s.True(s.mr.Exists(prefix + "coupon:SAVE10"))
}

func (s *CouponCacheTestSuite) TestListAutoApply_LoadRacingInvalidateIsNotCached() {
	a := builder.NewCouponBuilder().WithCode("AUTO").AutoApply().Build()
	s.origin.EXPECT().ListAutoApply(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]*coupon.Coupon, error) {
			s.Require().NoError(s.store.Invalidate(ctx, "AUTO"))
			return []*coupon.Coupon{a}, nil
		})

	list, err := s.store.ListAutoApply(s.ctx)

	s.Require().NoError(err)
	s.Len(list, 1)
	s.False(s.mr.Exists(prefix + "coupons:auto-apply"))
}

func (s *CouponCacheTestSuite) TestFindByCode_LoadOutlivesCanceledCaller() {
	c := builder.NewCouponBuilder().Build()
	ctx, cancel := context.WithCancel(s.ctx)
	s.origin.EXPECT().FindByCode(gomock.Any(), coupon.Code("SAVE10")).
		DoAndReturn(func(loadCtx context.Context, _ coupon.Code) (*coupon.Coupon, error) {
			cancel()
			s.NoError(loadCtx.Err(), "the shared load must not inherit the caller's cancellation")
			return c, nil
		})

	got, err := s.store.FindByCode(ctx, "SAVE10")

	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.True(s.mr.Exists(prefix + "coupon:SAVE10"))
}

func (s *CouponCacheTestSuite) TestList_BypassesCache() {
	filter := shared.CouponFilter{Limit: 10}
	s.origin.EXPECT().List(gomock.Any(), filter).Return([]*coupon.Coupon{}, nil).Times(2)

	for range 2 {
		_, err := s.store.List(s.ctx, filter)
		s.Require().NoError(err)
	}
}
