package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"park/internal/config"
	"park/internal/handler"
	"park/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	SessionHandler      *handler.SessionHandler
	VendorHandler       *handler.VendorHandler
	CustomerHandler     *handler.CustomerHandler
	EmployeeHandler     *handler.EmployeeHandler
	VerificationHandler *handler.VerificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	HTTP                config.HTTPConfig
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient, deps.HTTP.IdempotencyTTL))

	discoveryCache := cache.New(deps.HTTP.DiscoveryCacheTTL, 5*time.Minute)
	pairingLimit := middleware.RateLimit(rate.Limit(deps.HTTP.PairingRatePerSec), deps.HTTP.PairingRateBurst)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Customer routes.
		customers := v1.Group("/customers")
		{
			customers.POST("", deps.CustomerHandler.RegisterCustomer)
			customers.POST("/:id/code", pairingLimit, deps.SessionHandler.IssuePairingCode)
		}

		// Session routes.
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", deps.SessionHandler.OpenSession)
			sessions.POST("/:id/respond", deps.SessionHandler.Respond)
			sessions.POST("/:id/close", deps.SessionHandler.CloseSession)
			sessions.POST("/:id/pay", deps.SessionHandler.SettlePayment)
			sessions.POST("/:id/rate", deps.SessionHandler.RateSession)
		}

		// Vendor routes.
		vendors := v1.Group("/vendors")
		{
			cached := middleware.CacheResponses(discoveryCache, deps.HTTP.DiscoveryCacheTTL)
			vendors.POST("", deps.VendorHandler.CreateVendor)
			vendors.GET("/near", cached, deps.VendorHandler.FindNear)
			vendors.GET("/:id", cached, deps.VendorHandler.GetVendor)
		}

		// Employee routes.
		employees := v1.Group("/employees")
		{
			employees.GET("/:id", deps.EmployeeHandler.GetEmployee)
		}

		// Verification routes.
		verification := v1.Group("/verification")
		{
			verification.POST("/send", deps.VerificationHandler.SendCode)
			verification.POST("/verify", deps.VerificationHandler.VerifyCode)
		}
	}

	return router
}
