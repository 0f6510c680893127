package router

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/middleware"
)

// Handler registers unauthenticated routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ProtectedHandler additionally registers routes behind the auth middleware.
type ProtectedHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CacheTTL       time.Duration
	AllowOrigins   []string
	MetricsPrefix  string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	public  []Handler
	metrics *routerMetrics
	config  Config
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func NewRouter(auth *middleware.AuthMiddleware, config Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		public:  handlers,
		metrics: initRouterMetrics(config.MetricsPrefix),
		config:  config,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	corsConfig := cors.DefaultConfig()
	if len(config.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Setup wires health, metrics, the public surface and the authenticated
// surface under /api/v1.
func (r *Router) Setup() {
	r.engine.GET("/health", handler.Health())
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	public := api.Group("")
	if r.config.CacheTTL > 0 {
		cache := middleware.NewProjectionCache(r.config.CacheTTL)
		public.Use(cache.Cache())
	}
	for _, h := range r.public {
		h.RegisterRoutes(public)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.public {
		if ph, ok := h.(ProtectedHandler); ok {
			ph.RegisterProtectedRoutes(protected)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
