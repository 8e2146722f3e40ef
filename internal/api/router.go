package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amiyamandal-dev/feedbridge/internal/api/handlers"
	"github.com/amiyamandal-dev/feedbridge/internal/api/middleware"
	"github.com/amiyamandal-dev/feedbridge/internal/config"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// Router sets up the operations HTTP router
type Router struct {
	engine        *gin.Engine
	healthHandler *handlers.HealthHandler
	feedHandler   *handlers.FeedHandler
	cfg           config.ServerConfig
	logger        *logger.Logger
}

// NewRouter creates a new router
func NewRouter(
	healthHandler *handlers.HealthHandler,
	feedHandler *handlers.FeedHandler,
	cfg config.ServerConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		healthHandler: healthHandler,
		feedHandler:   feedHandler,
		cfg:           cfg,
		logger:        logger.WithComponent("http"),
	}
}

// Setup configures all routes and middleware
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.cfg.Mode)

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.LoggerMiddleware(r.logger))

	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/health/live", r.healthHandler.Liveness)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")
	v1.Use(middleware.TokenMiddleware(r.cfg.APIToken))
	{
		v1.GET("/mappings", r.feedHandler.Mappings)
		v1.GET("/feeds", r.feedHandler.List)
		v1.POST("/poll", middleware.RateLimitMiddleware(r.cfg.PollRatePerMinute), r.feedHandler.TriggerPoll)
	}

	return r.engine
}
