package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
	authHttp "github.com/nekogravitycat/salon-booking-backend/internal/auth/http"
	"github.com/nekogravitycat/salon-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/salon-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	hoursHttp "github.com/nekogravitycat/salon-booking-backend/internal/businesshours/http"
	"github.com/nekogravitycat/salon-booking-backend/internal/catalog"
	catalogHttp "github.com/nekogravitycat/salon-booking-backend/internal/catalog/http"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/ratelimit"
)

// Config holds everything the router needs to assemble the HTTP API.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	JWTManager     *auth.JWTManager
	AuthService    auth.Service
	HoursService   businesshours.Service
	CatalogService catalog.Service
	BookingService booking.Service

	HoldLimiter     ratelimit.Limiter
	HoldLimitConfig ratelimit.Config

	// HealthCheck reports whether backing stores are reachable.
	HealthCheck func(ctx context.Context) error
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Structured request log through zap.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.GinMiddleware(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // booking web app
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", healthHandler(cfg.HealthCheck))

	// sessionMiddleware: Validates if the request contains a valid session or admin JWT.
	sessionMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the token belongs to the shop administrator.
	adminMiddleware := auth.AdminRequired()
	// holdLimiter: Throttles hold creation per session.
	holdLimiter := ratelimit.Middleware(cfg.HoldLimiter, cfg.HoldLimitConfig, auth.GetSessionID, cfg.Logger)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := authHttp.NewHandler(cfg.AuthService)
	hoursHandler := hoursHttp.NewHandler(cfg.HoursService)
	catalogHandler := catalogHttp.NewHandler(cfg.CatalogService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		authHttp.RegisterRoutes(v1, authHandler)
		hoursHttp.RegisterRoutes(v1, hoursHandler, sessionMiddleware, adminMiddleware)
		catalogHttp.RegisterRoutes(v1, catalogHandler, sessionMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, sessionMiddleware, holdLimiter, adminMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
