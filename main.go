package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"booking-backend/config"
	"booking-backend/controllers"
	"booking-backend/gateway"
	"booking-backend/repositories"
	"booking-backend/routes"
	"booking-backend/services"
	"booking-backend/utils"
)

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg)
	if envErr != nil {
		logger.Debug(".env not loaded; using process environment", "error", envErr)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.MidtransServerKey == "" {
		logger.Warn("MIDTRANS_SERVER_KEY is not set; gateway checkout and webhooks are disabled")
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("database handle unavailable", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "driver", cfg.DBDriver, "database", cfg.DBName)

	// Stores and adapters
	store := repositories.NewBookingRepository(db)
	midtrans := gateway.NewClient(cfg.Gateway())
	notifier := services.NewAsyncNotifier(
		utils.NewSMTPMailer(cfg.SMTP, logger),
		repositories.NewNotificationRepository(db),
		logger,
		cfg.NotifyQueueSize,
	)

	// Services
	bookingService := services.NewBookingService(store, midtrans, notifier, logger, services.BookingOptions{
		PaymentDueWindow: cfg.PaymentDueWindow,
		PercentageMode:   cfg.PeakPercentageMode,
	})
	paymentService := services.NewPaymentService(store, midtrans, notifier, logger, cfg.MidtransVerifyStatus)
	availabilityService := services.NewAvailabilityService(store)
	pricingService := services.NewPricingService(store, cfg.PeakPercentageMode)
	propertyService := services.NewPropertyService(db)
	roomService := services.NewRoomService(db)

	// Controllers
	router := routes.SetupRouter(routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		JWTSecret:   cfg.JWTSecret,
		Logger:      logger,
	}, routes.Controllers{
		Auth:       controllers.NewAuthController(services.NewAuthService(repositories.NewUserRepository(db)), cfg.JWTSecret, cfg.JWTTTL),
		Booking:    controllers.NewBookingController(bookingService, availabilityService, pricingService),
		Payment:    controllers.NewPaymentController(paymentService, midtrans),
		Property:   controllers.NewPropertyController(propertyService, roomService),
		Room:       controllers.NewRoomController(roomService),
		PeakSeason: controllers.NewPeakSeasonController(services.NewPeakSeasonService(db)),
		Catalog: controllers.NewCatalogController(
			services.NewFacilityService(db),
			services.NewPropertyTypeService(db),
			services.NewLocationService(db),
		),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := notifier.Close(ctx); err != nil {
		logger.Warn("pending invoice emails not delivered", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("database close failed", "error", err)
	}

	logger.Info("server stopped gracefully")
}
