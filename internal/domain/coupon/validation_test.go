//go:build unit

package coupon_test

import (
	"errors"
	"testing"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/testutil/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationCase struct {
	name   string
	mutate func(*builder.CouponBuilder)
	field  string // expected FieldErrors key; empty means valid
}

func runValidationCases(t *testing.T, cases []validationCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := builder.NewCouponBuilder().With(tc.mutate).Build()
			err := c.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			var fe coupon.FieldErrors
			require.True(t, errors.As(err, &fe), "want FieldErrors, got %v", err)
			assert.Contains(t, fe, tc.field)
		})
	}
}

func TestCoupon_Validate(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		require.NoError(t, builder.NewCouponBuilder().Build().Validate())
	})

	t.Run("コード検証", func(t *testing.T) {
		runValidationCases(t, []validationCase{
			{name: "英数字OK", mutate: func(b *builder.CouponBuilder) { b.WithCode("SUMMER-25") }},
			{name: "1文字NG", mutate: func(b *builder.CouponBuilder) { b.Coupon.Code = "A" }, field: "code"},
			{name: "記号NG", mutate: func(b *builder.CouponBuilder) { b.Coupon.Code = "SAVE!" }, field: "code"},
		})
	})

	t.Run("割引率検証", func(t *testing.T) {
		runValidationCases(t, []validationCase{
			{name: "100%OK", mutate: func(b *builder.CouponBuilder) { b.Percent("100") }},
			{name: "0%NG", mutate: func(b *builder.CouponBuilder) { b.Percent("0") }, field: "discountValue"},
			{name: "100%超NG", mutate: func(b *builder.CouponBuilder) { b.Percent("100.5") }, field: "discountValue"},
			{name: "対象なしpercent_specificNG", mutate: func(b *builder.CouponBuilder) { b.PercentOn("10") }, field: "eligibleProducts"},
		})
	})

	t.Run("定額検証", func(t *testing.T) {
		runValidationCases(t, []validationCase{
			{name: "小数2桁OK", mutate: func(b *builder.CouponBuilder) { b.Fixed("19.99") }},
			{name: "小数3桁NG", mutate: func(b *builder.CouponBuilder) { b.Fixed("19.999") }, field: "discountValue"},
			{name: "負数NG", mutate: func(b *builder.CouponBuilder) { b.Fixed("-1") }, field: "discountValue"},
		})
	})

	t.Run("BOGO検証", func(t *testing.T) {
		runValidationCases(t, []validationCase{
			{name: "1+1 OK", mutate: func(b *builder.CouponBuilder) { b.Bogo(1, 1, "SKU-1") }},
			{name: "buy 0 NG", mutate: func(b *builder.CouponBuilder) { b.Bogo(0, 1) }, field: "bogoBuyQuantity"},
			{name: "get 0 NG", mutate: func(b *builder.CouponBuilder) { b.Bogo(1, 0) }, field: "bogoGetQuantity"},
			{name: "buy 上限超NG", mutate: func(b *builder.CouponBuilder) { b.Bogo(coupon.MaxLineQuantity+1, 1) }, field: "bogoBuyQuantity"},
			{name: "get 上限超NG", mutate: func(b *builder.CouponBuilder) { b.Bogo(1, 1<<62) }, field: "bogoGetQuantity"},
		})
	})

	t.Run("上限と期間", func(t *testing.T) {
		runValidationCases(t, []validationCase{
			{name: "usageLimit 0 NG", mutate: func(b *builder.CouponBuilder) { b.WithUsageLimit(0) }, field: "usageLimit"},
			{name: "usageLimitPerUser 0 NG", mutate: func(b *builder.CouponBuilder) { b.WithUserLimit(0) }, field: "usageLimitPerUser"},
			{name: "minCartValue 負数NG", mutate: func(b *builder.CouponBuilder) { b.WithMinCart("-5") }, field: "minCartValue"},
			{
				name: "終了日が開始日より前NG",
				mutate: func(b *builder.CouponBuilder) {
					b.WithWindow(builder.TimePtr(builder.BaseTime), builder.TimePtr(builder.BaseTime.Add(-time.Hour)))
				},
				field: "endDate",
			},
			{
				name:   "英語名なしNG",
				mutate: func(b *builder.CouponBuilder) { b.Coupon.Name.EN = " " },
				field:  "name.en",
			},
		})
	})

	t.Run("複数エラーはまとめて返す", func(t *testing.T) {
		c := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) {
			b.Coupon.Type = "mystery"
			b.Coupon.Value = decimal.NewFromInt(-1)
			b.Coupon.Code = "?"
		}).Build()

		var fe coupon.FieldErrors
		require.True(t, errors.As(c.Validate(), &fe))
		assert.Contains(t, fe, "code")
		assert.Contains(t, fe, "discountType")
	})
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []coupon.Item
		wantErr error
	}{
		{name: "empty cart", items: nil, wantErr: coupon.ErrEmptyCart},
		{
			name:    "missing sku",
			items:   []coupon.Item{{SKU: " ", Quantity: 1, UnitPrice: money("1")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:    "zero quantity",
			items:   []coupon.Item{{SKU: "A", Quantity: 0, UnitPrice: money("1")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:    "negative price",
			items:   []coupon.Item{{SKU: "A", Quantity: 1, UnitPrice: money("-0.01")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:    "sub-cent price",
			items:   []coupon.Item{{SKU: "A", Quantity: 1, UnitPrice: money("0.001")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:    "quantity above the line cap",
			items:   []coupon.Item{{SKU: "A", Quantity: coupon.MaxLineQuantity + 1, UnitPrice: money("1")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:    "quantity near int overflow",
			items:   []coupon.Item{{SKU: "A", Quantity: 1 << 62, UnitPrice: money("1")}},
			wantErr: coupon.ErrInvalidCartItem,
		},
		{
			name:  "quantity at the line cap",
			items: []coupon.Item{{SKU: "A", Quantity: coupon.MaxLineQuantity, UnitPrice: money("1")}},
		},
		{
			name:  "free item is fine",
			items: []coupon.Item{{SKU: "A", Quantity: 1, UnitPrice: money("0")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := coupon.ParseItems(tt.items)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, len(tt.items))
		})
	}

	t.Run("too many lines", func(t *testing.T) {
		items := make([]coupon.Item, coupon.MaxCartLines+1)
		for i := range items {
			items[i] = coupon.Item{SKU: "A", Quantity: 1, UnitPrice: money("1")}
		}
		_, err := coupon.ParseItems(items)
		assert.ErrorIs(t, err, coupon.ErrCartTooManyLines)
	})
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		coupon   *coupon.Coupon
		currency string
		wantEN   string
	}{
		{name: "percent", coupon: builder.NewCouponBuilder().Percent("15").Build(), currency: "ILS", wantEN: "15% OFF"},
		{name: "fractional percent", coupon: builder.NewCouponBuilder().Percent("12.5").Build(), currency: "ILS", wantEN: "12.50% OFF"},
		{name: "fixed shekel", coupon: builder.NewCouponBuilder().Fixed("20").Build(), currency: "ILS", wantEN: "₪20 off"},
		{name: "fixed dollars with cents", coupon: builder.NewCouponBuilder().Fixed("7.5").Build(), currency: "usd", wantEN: "$7.50 off"},
		{name: "bogo", coupon: builder.NewCouponBuilder().Bogo(2, 1).Build(), currency: "ILS", wantEN: "Buy 2 get 1 free"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := coupon.Label(tt.coupon, tt.currency)
			assert.Equal(t, tt.wantEN, label.EN)
			assert.NotEmpty(t, label.HE)
		})
	}
}
