package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/salon-booking-backend/internal/app"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/config"
	"github.com/nekogravitycat/salon-booking-backend/internal/db"
	"github.com/nekogravitycat/salon-booking-backend/internal/db/migrations"
	"github.com/nekogravitycat/salon-booking-backend/internal/events"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/ratelimit"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	zl, err := logger.New(cfg.IsProduction, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	// Connect DB
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DBDSN, MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		zl.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := migrations.Apply(ctx, pool, zl); err != nil {
			zl.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	// Hold rate limiting: shared through Redis when configured, otherwise per process.
	holdLimit := ratelimit.Config{Capacity: cfg.RateLimitCapacity, RefillEvery: cfg.RateLimitRefillEvery}
	holdLimiter := ratelimit.NewLocal(holdLimit)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zl.Warn("redis unavailable, using in-process rate limiting", zap.Error(err))
		} else {
			holdLimiter = ratelimit.NewRedis(rdb, holdLimit, "ratelimit:holds:")
		}
	}

	// Appointment events
	publisher := events.NewNopPublisher()
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, zl.Named("events"))
		if err != nil {
			zl.Warn("rabbitmq unavailable, appointment events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer func() { _ = publisher.Close() }()

	container := app.NewContainer(app.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		DBPool:            pool,
		Logger:            zl,
		Clock:             calendar.NewSystemClock(),
		Publisher:         publisher,
		HoldLimiter:       holdLimiter,
		JWTSecret:         cfg.JWTSecret,
		AdminTokenTTL:     cfg.JWTAccessTokenTTL,
		SessionTokenTTL:   cfg.SessionTokenTTL,
		AdminPasswordHash: cfg.AdminPasswordHash,
		BcryptCost:        cfg.BcryptCost,
		HoldTTL:           cfg.HoldTTL,
		HoldMaxRetries:    cfg.HoldMaxRetries,
		BookingWindowDays: cfg.BookingWindowDays,
		HoldLimit:         holdLimit,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zl.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zl.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited gracefully")
}
