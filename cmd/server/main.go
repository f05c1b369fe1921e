package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/autorentar/service-booking/internal/application"
	"github.com/autorentar/service-booking/internal/auth"
	"github.com/autorentar/service-booking/internal/config"
	"github.com/autorentar/service-booking/internal/database"
	"github.com/autorentar/service-booking/internal/events"
	"github.com/autorentar/service-booking/internal/fx"
	"github.com/autorentar/service-booking/internal/handler"
	"github.com/autorentar/service-booking/internal/health"
	"github.com/autorentar/service-booking/internal/jobs"
	"github.com/autorentar/service-booking/internal/kafka"
	"github.com/autorentar/service-booking/internal/logger"
	"github.com/autorentar/service-booking/internal/middleware"
	"github.com/autorentar/service-booking/internal/repository"
	"github.com/autorentar/service-booking/internal/subscription"
)

const serviceName = "service-booking"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service exited with error", zap.Error(err))
	}
}

func run(cfg *config.ServiceConfig, log *zap.Logger) error {
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(cfg.DB.DatabaseURL(), "migrations", log); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = producer.Close() }()

	repo := repository.NewGormBookingRepository(db)
	bookingService := application.NewBookingService(repo, producer, log)

	coverageClient := subscription.NewHTTPClient(cfg.Subscription.BaseURL, cfg.Subscription.Timeout, log)
	rateSource := fx.NewCachedSource(cfg.FX.RateURL, cfg.FX.CacheTTL, rdb, log)
	depositService := application.NewDepositService(repo, coverageClient, rateSource, cfg.Subscription.Timeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paymentConsumer := events.NewPaymentEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupPrefix+serviceName,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()
	go func() {
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment consumer stopped", zap.Error(err))
		}
	}()

	expiryJob := jobs.NewExpiryJob(bookingService, cfg.Jobs, log)
	if err := expiryJob.Start(); err != nil {
		return err
	}
	defer expiryJob.Stop()

	router := buildRouter(cfg, log, db, bookingService, depositService)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("service stopped cleanly")
	return nil
}

func buildRouter(
	cfg *config.ServiceConfig,
	log *zap.Logger,
	db *gorm.DB,
	bookingService *application.BookingService,
	depositService *application.DepositService,
) *gin.Engine {
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.CORSMiddleware(),
		middleware.SecurityHeadersMiddleware(),
	)

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 15*time.Minute, 24*time.Hour)

	api := router.Group("/api/v1", middleware.AuthMiddleware(jwtManager))
	handler.NewBookingHandler(bookingService).RegisterRoutes(api)
	handler.NewCheckoutHandler(depositService).RegisterRoutes(api)

	admin := api.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	handler.NewAdminHandler(bookingService).RegisterRoutes(admin)

	return router
}
