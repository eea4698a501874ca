package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	ginadapter "github.com/storefront/server/internal/adapter/inbound/gin"
	"github.com/storefront/server/internal/infra/config"
	"github.com/storefront/server/internal/port/outbound"
	"github.com/storefront/server/internal/shared/logger"
	"github.com/storefront/server/internal/utils/metrics"
	"github.com/storefront/server/internal/utils/middleware"
)

type routerDeps struct {
	cfg      *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	redis    goredis.UniversalClient
	tokens   outbound.SessionTokenPort
	roles    *ginadapter.RoleAdapter
	invites  *ginadapter.InviteAdapter
}

// newRouter creates and configures the Gin router.
func newRouter(d routerDeps) *gin.Engine {
	if d.cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(d.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(d.logger))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: d.cfg.CORS.AllowOrigins,
		MaxAge:       d.cfg.CORS.MaxAge,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.cfg.Metrics.Enabled && d.registry != nil {
		r.GET(d.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))
	}

	// Webhook routes (shared secret, no session)
	if d.cfg.Events.Webhook.Enabled {
		var store middleware.IdempotencyStore
		if d.redis != nil {
			store = d.redis
		}
		hooks := r.Group("/hooks")
		d.invites.RegisterHookRoutes(hooks, middleware.Idempotency(store, middleware.IdempotencyConfig{
			TTL:     d.cfg.Events.Webhook.IdempotencyTTL,
			Methods: []string{http.MethodPost},
			KeyFunc: middleware.HeaderOrBodyKey,
		}))
	}

	// Admin routes (session required)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.RequireAuth(d.tokens))
	d.roles.RegisterRoutes(admin)
	d.invites.RegisterAdminRoutes(admin)

	return r
}
