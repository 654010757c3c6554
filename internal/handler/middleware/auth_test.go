//go:build unit

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"coupon-engine/internal/domain/auth"
	"coupon-engine/internal/handler/middleware"
	"coupon-engine/internal/pkg/config"
	"coupon-engine/internal/pkg/jwt"
	"coupon-engine/internal/testutil/authtest"
	"coupon-engine/internal/testutil/httptest"
	"coupon-engine/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
	tokens *authtest.JWTHelper
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	s.tokens = authtest.NewJWTHelper(cfg.JWT)

	validator := usecase.NewTokenValidator(jwt.NewService(cfg.JWT.Secret, time.Hour, cfg.JWT.Issuer))
	m := middleware.NewAuthMiddleware(validator)

	whoami := func(c *gin.Context) {
		userID, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role.String()})
	}

	s.router = gin.New()
	s.router.GET("/optional", m.OptionalAuth(), whoami)
	s.router.GET("/admin", m.RequireAuth(), m.RequireRoleAtLeast(auth.RoleAdmin), whoami)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

type whoamiResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s *AuthMiddlewareTestSuite) TestOptionalAuth() {
	s.Run("anonymous passes through", func() {
		var got whoamiResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Empty(got.UserID)
	})

	s.Run("valid token sets the principal", func() {
		var got whoamiResponse
		token := s.tokens.CustomerToken(s.T(), "user-7")
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, token)
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Equal(whoamiResponse{UserID: "user-7", Role: "customer"}, got)
	})

	s.Run("invalid token is ignored", func() {
		var got whoamiResponse
		token := s.tokens.CreateExpiredToken(s.T(), "user-7", auth.RoleCustomer)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, token)
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Empty(got.UserID)
	})
}

func (s *AuthMiddlewareTestSuite) TestRequireAdmin() {
	s.Run("missing token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin", nil, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Access token required")
	})

	s.Run("expired token", func() {
		token := s.tokens.CreateExpiredToken(s.T(), "admin-1", auth.RoleAdmin)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin", nil, token)
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("customer is forbidden", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin", nil, s.tokens.CustomerToken(s.T(), "user-7"))
		httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("admin passes", func() {
		var got whoamiResponse
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin", nil, s.tokens.AdminToken(s.T()))
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Equal("admin", got.Role)
	})
}
