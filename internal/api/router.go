package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"jeonse-ledger-backend/config"
	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, accounts *auth.Service, listings ListingService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger())

	handler := NewHandler(accounts, listings)

	// Initialize middleware
	limiter := mw.NewClientRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.CacheTTL)
	responses := mw.NewResponseCache(cfg.CacheTTL)
	caching := mw.Cache(responses)

	// API group
	api := r.Group("/api")
	api.Use(mw.RateLimiter(limiter))
	{
		api.POST("/accounts/signup", handler.Signup)
		api.POST("/accounts/login", handler.Login)

		authed := api.Group("")
		authed.Use(mw.RequireActor(accounts), mw.InvalidateOnWrite(responses))
		{
			authed.POST("/accounts/logout", handler.Logout)
			authed.GET("/accounts/me", handler.Me)
			authed.DELETE("/accounts/me", handler.DeleteMe)

			// GET /api/listings?total_monthly_payment_lte=...&page=...&sort=...
			authed.GET("/listings", caching, handler.ListListings)
			authed.POST("/listings", handler.CreateListing)
			// GET /api/listings/{id}
			authed.GET("/listings/:id", caching, handler.GetListing)
		}
	}

	return r
}
