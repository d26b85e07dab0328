package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/mw"
)

// NewRouter creates and configures the console router.
func NewRouter(cfg config.ServerConfig, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.AccessLog())

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
		r.Use(cors.New(corsConfig))
	}

	handler := NewHandler(d)
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	authRequired := mw.AuthRequired(d.Sessions)
	caching := d.Cache.Handler()

	r.GET("/healthz", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	authed := api.Group("")
	authed.Use(authRequired)
	{
		authed.GET("/auth/me", handler.Me)
		authed.POST("/auth/logout", handler.Logout)

		parking := authed.Group("/parking")
		parking.GET("/logs", caching, handler.GetLogs)
		parking.GET("/logs/export", handler.ExportLogs)
		parking.POST("/logs/refresh", handler.RefreshLogs)
		parking.GET("/slots", caching, handler.ListSlots)
		parking.GET("/slots/available", caching, handler.AvailableSlots)
		parking.POST("/slots", handler.CreateSlot)
		parking.GET("/vehicles", handler.ParkedVehicles)
		parking.POST("/vehicles/park", handler.ParkVehicle)
		parking.PUT("/vehicles/:id/exit", handler.ExitVehicle)
		parking.GET("/stats", caching, handler.ParkingStats)

		taxi := authed.Group("/taxi")
		taxi.GET("/bookings", caching, handler.ListBookings)
		taxi.POST("/bookings", handler.CreateBooking)
		taxi.GET("/bookings/:id", caching, handler.GetBooking)
		taxi.PUT("/bookings/:id/status", handler.UpdateBookingStatus)
		taxi.PUT("/bookings/:id/assign-driver", handler.AssignDriver)
		taxi.PUT("/bookings/:id/payment", handler.UpdatePayment)
		taxi.GET("/drivers", caching, handler.ListDrivers)
		taxi.GET("/drivers/available", caching, handler.AvailableDrivers)
		taxi.POST("/drivers", handler.CreateDriver)
		taxi.GET("/stats", caching, handler.TaxiStats)
		taxi.GET("/fare-estimate", handler.FareEstimate)

		authed.GET("/subscriptions", handler.GetSubscription)
		authed.PUT("/subscriptions", handler.PutSubscription)
		authed.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	return r
}
