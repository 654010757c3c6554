//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coupon-engine/internal/domain/coupon"
	"coupon-engine/internal/infra/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestCoupon inserts c through the production repository and sets its usage count.
func CreateTestCoupon(t *testing.T, pool *pgxpool.Pool, c *coupon.Coupon) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, repository.NewCouponRepository(pool).Create(ctx, c))
	if c.UsageCount > 0 {
		_, err := pool.Exec(ctx, "UPDATE coupons SET usage_count = $2 WHERE id = $1", c.ID, c.UsageCount)
		require.NoError(t, err)
	}
}

func AssignCategories(t *testing.T, db DBLike, sku string, categories ...string) {
	t.Helper()

	ctx := context.Background()
	for _, cat := range categories {
		_, err := db.Exec(ctx, "INSERT INTO product_categories (sku, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", sku, cat)
		require.NoError(t, err)
	}
}

func UsageCount(t *testing.T, db DBLike, code string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT usage_count FROM coupons WHERE code = $1", code).Scan(&n)
	require.NoError(t, err)
	return n
}

func RedemptionCount(t *testing.T, db DBLike, code string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM coupon_redemptions WHERE coupon_code = $1", code).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts the catalog rows shared by every test
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO product_categories (sku, category_id) VALUES
		    ('SKU-SHIRT', 'apparel'),
		    ('SKU-JEANS', 'apparel'),
		    ('SKU-MUG', 'kitchen')
		ON CONFLICT DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
