package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/observability/metrics"
	"github.com/mamadbah2/toolwear/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Tools     *handlers.ToolHandler
	Molds     *handlers.MoldHandler
	Dashboard *handlers.DashboardHandler
}

// Options carries the observability hooks of the router. Both fields are optional.
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(opts.Metrics))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	tools := api.Group("/tools")
	tools.GET("", h.Tools.List)
	tools.POST("", h.Tools.Create)
	tools.GET("/swap-history", h.Tools.SwapHistory)
	tools.POST("/mold-comments", h.Molds.AddComment)
	tools.GET("/mold-comments/:moldId", h.Molds.Comments)
	tools.POST("/scrap", h.Molds.RecordScrap)
	tools.GET("/scrap", h.Molds.Scrap)
	tools.PUT("/:id/production", h.Tools.RecordProduction)
	tools.PUT("/:id/swap", h.Tools.Swap)
	tools.DELETE("/:id", h.Tools.Delete)

	dash := api.Group("/dashboard")
	dash.GET("", h.Dashboard.Full)
	dash.GET("/kpis", h.Dashboard.KPIs)
	dash.GET("/charts", h.Dashboard.Charts)

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
