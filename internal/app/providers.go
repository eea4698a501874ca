package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	// Domain
	"github.com/storefront/server/internal/domain/role"

	// Inbound adapters
	eventhandler "github.com/storefront/server/internal/adapter/inbound/events"
	ginadapter "github.com/storefront/server/internal/adapter/inbound/gin"

	// Outbound adapters
	"github.com/storefront/server/internal/adapter/outbound/breaker"
	"github.com/storefront/server/internal/adapter/outbound/jwt"
	"github.com/storefront/server/internal/adapter/outbound/memory"
	"github.com/storefront/server/internal/adapter/outbound/postgres"
	"github.com/storefront/server/internal/port/outbound"

	// Infrastructure
	"github.com/storefront/server/internal/infra/config"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/shared/cache"
	"github.com/storefront/server/internal/shared/database"
	"github.com/storefront/server/internal/shared/logger"

	// Utils
	"github.com/storefront/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideStores,
	ProvideRedisClient,
	ProvideTokenManager,
)

// DomainSet provides domain services.
var DomainSet = wire.NewSet(
	ProvideActorQuery,
	ProvideRoleResolver,
	ProvideInviteReconciler,
)

// EventSet provides the event bus and its handlers.
var EventSet = wire.NewSet(
	ProvideInviteAcceptedHandler,
	ProvideEventBus,
	wire.Bind(new(events.Publisher), new(*events.Bus)),
)

// HTTPSet provides HTTP adapters and the router.
var HTTPSet = wire.NewSet(
	ProvideRoleAdapter,
	ProvideInviteAdapter,
	ProvideRouter,
)

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	DomainSet,
	EventSet,
	HTTPSet,
)

// Stores bundles the record store ports of one storage driver.
type Stores struct {
	Users   outbound.UserDatabasePort
	Invites outbound.InviteDatabasePort
	Actors  outbound.ActorQueryPort

	// Memory is set when the memory driver is active.
	Memory *memory.Store
}

// ProvideLogger creates the slog logger used by HTTP middleware.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates the zap logger used by domain services.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func()) {
	l := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return l, func() { _ = l.Sync() }
}

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates application metrics, or nil when disabled.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewWithRegistry(cfg.Metrics.Namespace, reg)
}

// ProvideStores opens the configured storage driver.
func ProvideStores(cfg *config.Config, log *zap.Logger) (*Stores, func(), error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &Stores{
			Users:   memory.NewUserAdapter(store),
			Invites: memory.NewInviteAdapter(store),
			Actors:  memory.NewActorQueryAdapter(store),
			Memory:  store,
		}, func() {}, nil

	case "postgres", "":
		ctx := context.Background()
		sqlDB, err := database.OpenSQL(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, sqlDB); err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
		}
		db, err := database.New(&cfg.Database)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		cleanup := func() {
			_ = database.Close(db)
			_ = sqlDB.Close()
		}
		return &Stores{
			Users:   postgres.NewUserAdapter(db),
			Invites: postgres.NewInviteAdapter(db),
			Actors:  postgres.NewActorQueryAdapter(sqlDB),
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// ProvideRedisClient creates a Redis client. Redis only backs webhook
// deduplication, so a failed connection disables it instead of failing
// startup.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, webhook deduplication disabled", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideTokenManager creates the session token manager.
func ProvideTokenManager(cfg *config.Config) outbound.SessionTokenPort {
	return jwt.NewManager(&jwt.Config{
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
	})
}

// ===== Domain Providers =====

// ActorQuery is the breaker-wrapped preferred read path.
type ActorQuery outbound.ActorQueryPort

// ProvideActorQuery wraps the store's actor query in a circuit breaker.
func ProvideActorQuery(cfg *config.Config, stores *Stores, m *metrics.Metrics, log *zap.Logger) ActorQuery {
	var observe breaker.StateObserver
	if m != nil {
		observe = func(state gobreaker.State) { m.SetBreakerState(int(state)) }
	}
	return breaker.NewActorQuery(stores.Actors, &breaker.Config{
		Timeout:          cfg.ActorQuery.Timeout,
		FailureThreshold: cfg.ActorQuery.FailureThreshold,
		OpenTimeout:      cfg.ActorQuery.OpenTimeout,
		HalfOpenRequests: cfg.ActorQuery.HalfOpenRequests,
	}, log, observe)
}

// ProvideRoleResolver creates the role resolver.
func ProvideRoleResolver(actors ActorQuery, stores *Stores, log *zap.Logger) role.RoleResolver {
	return role.NewResolver(actors, stores.Users, log.Named("role_resolver"))
}

// ProvideInviteReconciler creates the invite reconciler.
func ProvideInviteReconciler(stores *Stores, log *zap.Logger) role.InviteReconciler {
	return role.NewReconciler(stores.Invites, stores.Users, log.Named("invite_reconciler"))
}

// ===== Event Providers =====

// ProvideInviteAcceptedHandler creates the invite.accepted handler.
func ProvideInviteAcceptedHandler(cfg *config.Config, reconciler role.InviteReconciler, m *metrics.Metrics, log *zap.Logger) *eventhandler.InviteAcceptedHandler {
	return eventhandler.NewInviteAcceptedHandler(reconciler, m, cfg.Events.HandlerTimeout, log.Named("invite_accepted"))
}

// ProvideEventBus creates the event bus with every handler registered.
func ProvideEventBus(log *zap.Logger, inviteAccepted *eventhandler.InviteAcceptedHandler) *events.Bus {
	bus := events.NewBus(log.Named("event_bus"))
	bus.Register(inviteAccepted)
	return bus
}

// ===== HTTP Providers =====

// ProvideRoleAdapter creates the role HTTP adapter.
func ProvideRoleAdapter(resolver role.RoleResolver, m *metrics.Metrics) *ginadapter.RoleAdapter {
	return ginadapter.NewRoleAdapter(resolver, m)
}

// ProvideInviteAdapter creates the invite HTTP adapter.
func ProvideInviteAdapter(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *ginadapter.InviteAdapter {
	return ginadapter.NewInviteAdapter(publisher, ginadapter.InviteConfig{
		WebhookSecret: cfg.Events.Webhook.Secret,
	}, m, log.Named("invite_http"))
}

// ProvideRouter builds the HTTP router.
func ProvideRouter(
	cfg *config.Config,
	log *logger.Logger,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	redis goredis.UniversalClient,
	tokens outbound.SessionTokenPort,
	roles *ginadapter.RoleAdapter,
	invites *ginadapter.InviteAdapter,
) *gin.Engine {
	return newRouter(routerDeps{
		cfg:      cfg,
		logger:   log,
		registry: reg,
		metrics:  m,
		redis:    redis,
		tokens:   tokens,
		roles:    roles,
		invites:  invites,
	})
}
