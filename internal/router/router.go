package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/storedesk/internal/authz"
	"github.com/storedesk/internal/cache"
	"github.com/storedesk/internal/config"
	adminhandlers "github.com/storedesk/internal/http/handlers/admin"
	publichandlers "github.com/storedesk/internal/http/handlers/public"
	handlershared "github.com/storedesk/internal/http/handlers/shared"
	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/provider"
	"github.com/storedesk/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if err := handlershared.RegisterValidators(); err != nil {
		logger.Errorw("router_register_validators_failed", "error", err)
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sd"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon", redisPrefix),
		WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CouponRateLimit.BlockSeconds,
		MessageKey:    "error.coupon_too_many",
	}

	// 中间件
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))
	if c.Metrics != nil {
		r.Use(c.Metrics.Middleware())
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(c.Metrics.Handler()))
	}

	// 本地存储时直接提供上传文件访问
	if local, ok := c.Storage.(*storage.LocalStorage); ok {
		r.Static(localStaticPrefix(cfg.Storage.PublicURL), local.Root())
	}

	apiV1 := r.Group("/api/v1")
	{
		// 前台接口
		public := apiV1.Group("/public")
		{
			couponLimit := RateLimitMiddleware(redisClient, couponRule, KeyByIPAndJSONField("user_id"))
			public.POST("/coupons/validate", couponLimit, publicHandler.ValidateCoupon)
			public.POST("/coupons/apply", couponLimit, publicHandler.ApplyCoupon)
			public.GET("/offer-images", publicHandler.GetOfferImages)
		}

		// 后台接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)
			admin.GET("/captcha", adminHandler.GetCaptcha)

			authenticated := admin.Group("")
			authenticated.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
			{
				// 当前管理员自身操作不走 RBAC
				authenticated.GET("/verify", adminHandler.VerifyAdmin)
				authenticated.PUT("/password", adminHandler.UpdateAdminPassword)
			}

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/coupons", adminHandler.GetAdminCoupons)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.GET("/coupons/:id", adminHandler.GetAdminCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)
				authorized.GET("/coupons/:id/stats", adminHandler.GetCouponStats)

				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.GET("/categories/:id", adminHandler.GetAdminCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				authorized.GET("/subcategories", adminHandler.GetAdminSubCategories)
				authorized.POST("/subcategories", adminHandler.CreateSubCategory)
				authorized.GET("/subcategories/:id", adminHandler.GetAdminSubCategory)
				authorized.PUT("/subcategories/:id", adminHandler.UpdateSubCategory)
				authorized.DELETE("/subcategories/:id", adminHandler.DeleteSubCategory)

				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
				authorized.DELETE("/orders/:id", adminHandler.DeleteOrder)

				authorized.GET("/offer-images", adminHandler.GetAdminOfferImages)
				authorized.POST("/offer-images", adminHandler.CreateOfferImage)
				authorized.GET("/offer-images/:id", adminHandler.GetAdminOfferImage)
				authorized.PUT("/offer-images/:id", adminHandler.UpdateOfferImage)
				authorized.DELETE("/offer-images/:id", adminHandler.DeleteOfferImage)

				authorized.POST("/upload", adminHandler.UploadFile)

				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	health := func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "OK"})
	}
	r.GET("/health", health)
	r.GET("/api/health", health)

	return r
}

// localStaticPrefix 本地存储的访问前缀只取路径部分
func localStaticPrefix(publicURL string) string {
	prefix := strings.TrimSpace(publicURL)
	if idx := strings.Index(prefix, "://"); idx >= 0 {
		rest := prefix[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			prefix = rest[slash:]
		} else {
			prefix = ""
		}
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return "/uploads"
	}
	return prefix
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成可授权的权限清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		switch item.Path {
		case "/api/v1/admin/login", "/api/v1/admin/captcha", "/api/v1/admin/verify", "/api/v1/admin/password":
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	if len(segments) < 2 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
