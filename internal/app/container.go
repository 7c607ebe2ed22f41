package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/salon-booking-backend/internal/api"
	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
	"github.com/nekogravitycat/salon-booking-backend/internal/booking"
	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/catalog"
	"github.com/nekogravitycat/salon-booking-backend/internal/customer"
	"github.com/nekogravitycat/salon-booking-backend/internal/db"
	"github.com/nekogravitycat/salon-booking-backend/internal/events"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/ratelimit"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	Clock        calendar.Clock
	Publisher    events.Publisher
	HoldLimiter  ratelimit.Limiter

	JWTSecret         string
	AdminTokenTTL     time.Duration
	SessionTokenTTL   time.Duration
	AdminPasswordHash string
	BcryptCost        int

	HoldTTL           time.Duration
	HoldMaxRetries    int
	BookingWindowDays int
	HoldLimit         ratelimit.Config
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	txManager := db.NewTxManager(cfg.DBPool)

	// Auth Module
	authService := auth.NewService(jwtManager, passwordHasher, cfg.AdminPasswordHash, cfg.SessionTokenTTL, cfg.AdminTokenTTL)

	// Business Hours Module
	hoursRepo := businesshours.NewPgxRepository(cfg.DBPool, txManager)
	hoursService := businesshours.NewService(hoursRepo)

	// Catalog Module
	catalogRepo := catalog.NewPgxRepository(cfg.DBPool)
	catalogService := catalog.NewService(catalogRepo)

	// Customer Module
	customerRepo := customer.NewPgxRepository(cfg.DBPool)
	customerService := customer.NewService(customerRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool, txManager)
	bookingService := booking.NewService(
		bookingRepo,
		hoursService,
		catalogService,
		customerService,
		cfg.Publisher,
		cfg.Clock,
		cfg.Logger.Named("booking"),
		booking.WithHoldTTL(cfg.HoldTTL),
		booking.WithMaxRetries(cfg.HoldMaxRetries),
		booking.WithBookingWindowDays(cfg.BookingWindowDays),
	)

	// API Router Config
	routerParams := api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Logger:          cfg.Logger,
		JWTManager:      jwtManager,
		AuthService:     authService,
		HoursService:    hoursService,
		CatalogService:  catalogService,
		BookingService:  bookingService,
		HoldLimiter:     cfg.HoldLimiter,
		HoldLimitConfig: cfg.HoldLimit,
		HealthCheck:     cfg.DBPool.Ping,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
