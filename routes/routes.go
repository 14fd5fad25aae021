package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"booking-backend/controllers"
	"booking-backend/middleware"
)

type Controllers struct {
	Auth       *controllers.AuthController
	Booking    *controllers.BookingController
	Payment    *controllers.PaymentController
	Property   *controllers.PropertyController
	Room       *controllers.RoomController
	PeakSeason *controllers.PeakSeasonController
	Catalog    *controllers.CatalogController
}

type Options struct {
	CORSOrigins []string
	JWTSecret   string
	Logger      *slog.Logger
}

// SetupRouter wires middleware and every /api route onto a new engine.
func SetupRouter(opts Options, h Controllers) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(opts.Logger),
		middleware.Recovery(opts.Logger),
	)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := middleware.Auth(opts.JWTSecret)
	admin := middleware.RequireRole("ADMIN")

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Auth.Login)

		bookings := api.Group("/bookings")
		{
			bookings.GET("/available-rooms", h.Booking.AvailableRooms)
			bookings.POST("/calculate-price", h.Booking.CalculatePrice)

			mine := bookings.Group("", authed)
			mine.POST("", h.Booking.Create)
			mine.GET("/user/me", h.Booking.MyBookings)
			mine.GET("/:id", h.Booking.Get)
			mine.POST("/:id/cancel", h.Booking.Cancel)
			mine.POST("/:id/checkout-session", h.Booking.CheckoutSession)
		}

		payments := api.Group("/payments")
		{
			// signature-checked, no bearer token
			payments.POST("/webhook", h.Payment.Webhook)
			payments.GET("/:bookingId/status", authed, h.Payment.Status)
			payments.POST("/:bookingId/complete", authed, admin, h.Payment.Complete)
		}

		adminRoutes := api.Group("/admin", authed, admin)
		{
			adminRoutes.POST("/bookings/expire-overdue", h.Booking.ExpireOverdue)
		}

		properties := api.Group("/properties")
		{
			properties.GET("", h.Property.List)
			properties.GET("/:id", h.Property.Get)
			properties.GET("/:id/rooms", h.Property.Rooms)
			properties.POST("", authed, admin, h.Property.Create)
			properties.PUT("/:id", authed, admin, h.Property.Update)
			properties.DELETE("/:id", authed, admin, h.Property.Delete)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", h.Room.List)
			rooms.GET("/:id", h.Room.Get)
			rooms.POST("", authed, admin, h.Room.Create)
			rooms.PUT("/:id", authed, admin, h.Room.Update)
			rooms.DELETE("/:id", authed, admin, h.Room.Delete)

			rooms.GET("/:id/peak-season", h.PeakSeason.List)
			rooms.POST("/:id/peak-season", authed, admin, h.PeakSeason.Create)
			rooms.POST("/:id/peak-season/bulk", authed, admin, h.PeakSeason.BulkCreate)
		}

		peak := api.Group("/peak-season")
		{
			peak.GET("/:id", h.PeakSeason.Get)
			peak.PUT("/:id", authed, admin, h.PeakSeason.Update)
			peak.DELETE("/:id", authed, admin, h.PeakSeason.Delete)
		}

		facilities := api.Group("/facilities")
		{
			facilities.GET("", h.Catalog.ListFacilities)
			facilities.POST("", authed, admin, h.Catalog.CreateFacility)
			facilities.PUT("/:id", authed, admin, h.Catalog.UpdateFacility)
			facilities.DELETE("/:id", authed, admin, h.Catalog.DeleteFacility)
		}

		types := api.Group("/property-types")
		{
			types.GET("", h.Catalog.ListPropertyTypes)
			types.POST("", authed, admin, h.Catalog.CreatePropertyType)
			types.PUT("/:id", authed, admin, h.Catalog.UpdatePropertyType)
			types.DELETE("/:id", authed, admin, h.Catalog.DeletePropertyType)
		}

		locations := api.Group("/locations")
		{
			locations.GET("", h.Catalog.ListLocations)
			locations.POST("", authed, admin, h.Catalog.CreateLocation)
			locations.PUT("/:id", authed, admin, h.Catalog.UpdateLocation)
			locations.DELETE("/:id", authed, admin, h.Catalog.DeleteLocation)
		}
	}

	return r
}
