package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"coupon-engine/internal/domain/auth"
	"coupon-engine/internal/handler/api"
	"coupon-engine/internal/handler/middleware"
	"coupon-engine/internal/pkg/config"
)

const maxCartBodyBytes = 1 << 20

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups the API handlers so the router signature stays stable as endpoints grow.
type Handlers struct {
	Coupon      *api.CouponHandler
	Redemption  *api.RedemptionHandler
	AdminCoupon *api.AdminCouponHandler
}

func NewHandlers(coupon *api.CouponHandler, redemption *api.RedemptionHandler, adminCoupon *api.AdminCouponHandler) Handlers {
	return Handlers{Coupon: coupon, Redemption: redemption, AdminCoupon: adminCoupon}
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Storefront: anonymous carts are allowed, a valid token supplies the user id
		coupons := apiGroup.Group("/coupons")
		coupons.Use(authMiddleware.OptionalAuth())
		{
			cartLimit := []gin.HandlerFunc{middleware.BodyLimit(maxCartBodyBytes)}
			addRoutes(coupons, []route{
				{Method: http.MethodPost, Path: "/validate", Handler: h.Coupon.Validate, Mw: cartLimit},
				{Method: http.MethodPost, Path: "/auto-apply", Handler: h.Coupon.AutoApply, Mw: cartLimit},
				{Method: http.MethodPost, Path: "/reconcile", Handler: h.Coupon.Reconcile, Mw: cartLimit},
			})
		}

		// Only checkout moves usage counters; shoppers never call this directly
		redemptions := apiGroup.Group("/redemptions")
		redemptions.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(auth.RoleService))
		{
			addRoutes(redemptions, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Redemption.Record},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(auth.RoleAdmin))
		{
			addRoutes(admin.Group("/coupons"), []route{
				{Method: http.MethodPost, Path: "", Handler: h.AdminCoupon.Create},
				{Method: http.MethodGet, Path: "", Handler: h.AdminCoupon.List},
				{Method: http.MethodGet, Path: "/:code", Handler: h.AdminCoupon.Get},
				{Method: http.MethodPut, Path: "/:code", Handler: h.AdminCoupon.Update},
				{Method: http.MethodPost, Path: "/:code/deactivate", Handler: h.AdminCoupon.Deactivate},
				{Method: http.MethodPost, Path: "/:code/test", Handler: h.AdminCoupon.Test},
				{Method: http.MethodGet, Path: "/:code/redemptions", Handler: h.AdminCoupon.Redemptions},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
