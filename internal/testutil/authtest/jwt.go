//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"coupon-engine/internal/domain/auth"
	"coupon-engine/internal/pkg/config"
	"coupon-engine/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, duration, h.cfg.Issuer).GenerateToken(subject, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) AdminToken(t *testing.T) string {
	t.Helper()
	return h.GenerateToken(t, "admin-1", auth.RoleAdmin)
}

// ServiceToken is what the checkout subsystem presents when recording redemptions.
func (h *JWTHelper) ServiceToken(t *testing.T) string {
	t.Helper()
	return h.GenerateToken(t, "checkout-service", auth.RoleService)
}

func (h *JWTHelper) CustomerToken(t *testing.T, userID string) string {
	t.Helper()
	return h.GenerateToken(t, userID, auth.RoleCustomer)
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, -time.Minute, h.cfg.Issuer).GenerateToken(subject, role)
	require.NoError(t, err)
	return token
}
