package router

import (
	"fmt"

	"github.com/florencebot/internal/cache"
	"github.com/florencebot/internal/config"
	publichandlers "github.com/florencebot/internal/http/handlers/public"
	handlershared "github.com/florencebot/internal/http/handlers/shared"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	cartRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart", cache.Prefix()),
		WindowSeconds: cfg.Security.CartRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CartRateLimit.MaxRequests,
		MessageKey:    "error.too_many_requests",
	}
	cartWriteLimit := RateLimitMiddleware(c.RedisClient, cartRule, KeyByGuestID)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(GuestIdentityMiddleware(cfg.Cart.GuestCookie, cfg.Cart.GuestCookieDays))
	apiV1.Use(TokenSessionMiddleware(cfg.Auth.JWTSecret, c.AuthLeeway()))
	{
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.GET("/activity", publicHandler.GetCartActivity)
			cart.GET("/items/:product_id", publicHandler.GetCartItemStatus)
			cart.POST("/items", cartWriteLimit, publicHandler.AddCartItem)
			cart.DELETE("/items/:product_id", cartWriteLimit, publicHandler.RemoveCartItem)
			cart.DELETE("", cartWriteLimit, publicHandler.ClearCart)
		}

		pricing := apiV1.Group("/pricing")
		{
			pricing.GET("/tiers", publicHandler.GetPricingTiers)
			pricing.GET("/bulk-discount", publicHandler.GetBulkDiscount)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.NoRoute(handlershared.NotFoundHandler)

	return r
}
