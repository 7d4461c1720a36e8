package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/comitanigiacomo/neko-engine/docs"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RateLimit struct {
	Requests int
	Window   time.Duration
}

type RouterDependencies struct {
	SessionHandler     *SessionHandler
	ProgressHandler    *ProgressHandler
	StreakHandler      *StreakHandler
	AchievementHandler *AchievementHandler
	TradelineHandler   *TradelineHandler
	LayoutHandler      *LayoutHandler
	BillingHandler     *BillingHandler
	TokenService       *services.TokenService
	Logger             *logger.Logger

	// DB is nil for the in-memory driver.
	DB          Pinger
	Redis       *redis.Client
	RateLimit   RateLimit
	CORSOrigins []string
	// ServiceName enables otelgin spans when set.
	ServiceName string
	StartTime   time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if deps.ServiceName != "" {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.CORSOrigins...))

	if deps.Redis != nil && deps.RateLimit.Requests > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window, deps.Logger))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.SessionHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.SessionHandler.RegisterRoutes(protected)
		deps.ProgressHandler.RegisterRoutes(protected)
		deps.StreakHandler.RegisterRoutes(protected)
		deps.AchievementHandler.RegisterRoutes(protected)
		deps.TradelineHandler.RegisterRoutes(protected)
		deps.LayoutHandler.RegisterRoutes(protected)
		if deps.BillingHandler != nil {
			deps.BillingHandler.RegisterRoutes(protected)
		}
	}

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "in-memory"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
