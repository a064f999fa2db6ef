package router

import (
	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/handlers"
	"github.com/P3chys/exchange-api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Storage, RateLimiter, Metrics and Logger may be nil.
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	Applications handlers.ApplicationService
	Programs     handlers.ExchangeProgramService
	Users        handlers.UserAccounts
	Activities   handlers.ActivityLister
	Storage      handlers.DocumentStorage
	RateLimiter  *middleware.RateLimiter
	Metrics      *middleware.Metrics
	Health       map[string]handlers.Pinger
}

func Setup(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Logger), gin.Recovery())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", deps.Metrics.Handler())
	}

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
	}))

	r.GET("/health", handlers.HealthCheck(deps.DB, deps.Health))

	ipLimit, emailLimit := rateLimits(deps)

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", ipLimit, handlers.Register(deps.Users, cfg))
			auth.POST("/login", ipLimit, emailLimit, handlers.Login(deps.Users, cfg))
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(cfg))
		{
			protected.GET("/auth/me", handlers.GetCurrentUser(deps.Users))

			applications := protected.Group("/applications")
			{
				applications.POST("", handlers.PublishApplication(deps.Applications))
				applications.GET("", handlers.ListApplications(deps.Applications))
				applications.GET("/:id", handlers.GetApplication(deps.Applications))
				applications.PUT("", handlers.UpdateApplication(deps.Applications))
				applications.PUT("/cancel", handlers.CancelApplication(deps.Applications))
				applications.PUT("/close", handlers.CloseApplication(deps.Applications))
				applications.DELETE("/:id/documents/:documentId", handlers.DeleteApplicationDocument(deps.Applications))
			}

			programs := protected.Group("/exchange-programs")
			{
				programs.POST("", handlers.PublishExchangeProgram(deps.Programs))
				programs.GET("", handlers.ListExchangePrograms(deps.Programs))
				programs.GET("/:id", handlers.GetExchangeProgram(deps.Programs))
				programs.PUT("", handlers.UpdateExchangeProgram(deps.Programs))
				programs.DELETE("/:id", handlers.CloseExchangeProgram(deps.Programs))
			}

			if deps.Storage != nil {
				protected.POST("/documents", ipLimit, handlers.UploadDocument(deps.Storage))
				protected.GET("/documents/*key", handlers.DownloadDocument(deps.Storage))
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(cfg), middleware.AdminRequired())
		{
			admin.POST("/users", handlers.CreateUser(deps.Users))
			admin.GET("/activities", handlers.GetRecentActivities(deps.Activities))
		}
	}

	return r
}

// rateLimits picks Redis-backed limits when Redis is available and
// in-process ones otherwise.
func rateLimits(deps Dependencies) (gin.HandlerFunc, gin.HandlerFunc) {
	cfg := deps.Config
	if deps.RateLimiter != nil {
		return deps.RateLimiter.RateLimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow),
			deps.RateLimiter.RateLimitByEmail(cfg.RateLimitRequests, cfg.RateLimitWindow, "email")
	}
	local := middleware.LocalRateLimit(middleware.NewLocalLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow))
	return local, func(c *gin.Context) { c.Next() }
}
