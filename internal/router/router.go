package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler/health"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler/pregnancy"
	promhandler "github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler/prometheus"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine     *gin.Engine
	pregnancyH Handler
	healthH    Handler
	promH      *promhandler.Handler
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
	Timeout    middleware.TimeoutConfig
}

func NewRouter(
	pregnancyH *pregnancy.Handler,
	healthH *health.Handler,
	logger zerolog.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:     engine,
		pregnancyH: pregnancyH,
		healthH:    healthH,
		promH:      promhandler.New(),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(logger),
		middleware.ErrorHandler(),
		r.promH.Middleware(),
		middleware.Timeout(config.Timeout),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.promH.Handler())
	r.engine.GET("/health/metrics", r.promH.Handler())
	r.healthH.RegisterRoutes(r.engine.Group(""))

	api := r.engine.Group("/api/v1")
	r.pregnancyH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
