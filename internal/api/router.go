package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"rental-inventory-backend/config"
	"rental-inventory-backend/internal/inventory"
	"rental-inventory-backend/internal/mw"
	"rental-inventory-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, svc *inventory.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		r.Use(cors.New(corsCfg))
	}

	handler := NewHandler(s, svc, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateBurst)

	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// The availability pipeline is recomputed per query and is never
		// response-cached.
		api.GET("/availability", handler.GetAvailability)

		api.GET("/devices", caching, handler.ListDevices)
		api.POST("/devices", handler.CreateDevice)

		api.GET("/reservations", handler.ListReservations)
		api.POST("/reservations", handler.CreateReservation)
		api.PATCH("/reservations/:id", handler.UpdateReservation)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
