package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sentinel/api/internal/ads"
	"github.com/sentinel/api/internal/config"
	"github.com/sentinel/api/internal/database"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/handlers"
	"github.com/sentinel/api/internal/llm"
	"github.com/sentinel/api/internal/middleware"
	"github.com/sentinel/api/internal/repository"
	"github.com/sentinel/api/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// serverDeps are the long-lived dependencies the router is built from.
// redis may be nil.
type serverDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *database.Postgres
	redis     *database.Redis
	events    eventbus.Publisher
	registry  *prometheus.Registry
	llmClient *llm.Client
	generator llm.Generator
}

func (d serverDeps) limiters() (api, generation middleware.Limiter) {
	if d.redis != nil {
		return middleware.NewRedisRateLimiter(d.redis.Client(), "api", 100, time.Minute),
			middleware.NewRedisRateLimiter(d.redis.Client(), "generation", 20, time.Minute)
	}
	return middleware.NewRateLimiter(100, 10, time.Minute), middleware.NewRateLimiter(20, 2, time.Minute)
}

func newRouter(d serverDeps) *gin.Engine {
	if d.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(d.logger))
	router.Use(telemetry.Middleware())
	router.Use(middleware.NewHTTPMetrics(d.registry).Handler())
	router.Use(middleware.CORS())
	router.Use(middleware.SecureHeaders(d.cfg.IsProduction()))

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	checks := []handlers.DependencyCheck{
		{Name: "database", Pinger: d.db},
		{Name: "llm", Pinger: d.llmClient},
	}
	if d.redis != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Pinger: d.redis})
	} else {
		checks = append(checks, handlers.DependencyCheck{Name: "redis"})
	}
	healthHandler := handlers.NewHealthHandler(checks...)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)

	pool := d.db.Pool()
	reviewRepo := repository.NewReviewRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	marketingRepo := repository.NewMarketingRepository(pool)

	authHandler := handlers.NewAuthHandler(repository.NewUserRepository(pool), d.cfg.JWTSecret, d.logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, d.generator, d.events, d.logger).
		WithDraftBudget(draftBudget(d.cfg))
	adsHandler := handlers.NewAdsHandler(ads.NewService(repository.NewAdSummaryRepository(pool), d.logger), d.logger)
	chatHandler := handlers.NewChatHandler(chatRepo, d.generator, d.events, d.logger)
	marketingHandler := handlers.NewMarketingHandler(marketingRepo, d.generator, d.events, d.logger)

	apiLimiter, generationLimiter := d.limiters()

	api := router.Group("/api")
	{
		// Auth routes (public, rate limited by IP)
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimitMiddleware(generationLimiter, d.logger), authHandler.Register)
			auth.POST("/login", middleware.RateLimitMiddleware(generationLimiter, d.logger), authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(d.cfg.JWTSecret))
		protected.Use(middleware.RateLimitMiddleware(apiLimiter, d.logger))
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)

			reviews := protected.Group("/reviews")
			{
				reviews.GET("", reviewHandler.ListReviews)
				reviews.POST("/:id/approve-reply", reviewHandler.ApproveReply)
				reviews.POST("/:id/escalate", reviewHandler.Escalate)
			}

			protected.GET("/ads/summary", adsHandler.GetSummary)

			chat := protected.Group("/chat")
			{
				chat.GET("/history", chatHandler.GetHistory)
				chat.POST("/send", middleware.RateLimitMiddleware(generationLimiter, d.logger), chatHandler.SendMessage)
			}

			marketing := protected.Group("/marketing")
			{
				marketing.GET("/overview", marketingHandler.GetOverview)
				marketing.POST("/optimize", middleware.RateLimitMiddleware(generationLimiter, d.logger), marketingHandler.Optimize)
			}
		}
	}

	return router
}
