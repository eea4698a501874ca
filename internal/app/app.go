package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	amqpconsumer "github.com/storefront/server/internal/adapter/inbound/amqp"
	kafkaconsumer "github.com/storefront/server/internal/adapter/inbound/kafka"
	"github.com/storefront/server/internal/infra/config"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/utils/metrics"
)

// Application is what cmd/server runs.
type Application interface {
	Router() *gin.Engine
	Start(ctx context.Context) error
	Stop()
}

var _ Application = (*App)(nil)

// consumer is a long-running event transport.
type consumer interface {
	Run(ctx context.Context) error
}

// App represents the application.
type App struct {
	config  *config.Config
	router  *gin.Engine
	logger  *zap.Logger
	bus     *events.Bus
	metrics *metrics.Metrics
	stores  *Stores

	consumers map[string]consumer
	closers   []func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new application instance. The order mirrors the provider
// sets in providers.go.
func New(cfg *config.Config) (*App, error) {
	app := &App{config: cfg, consumers: make(map[string]consumer)}

	// Infrastructure
	log := ProvideLogger(cfg)
	zapLog, syncLog := ProvideZapLogger(cfg)
	app.logger = zapLog
	app.closers = append(app.closers, syncLog)

	reg := ProvideRegistry()
	app.metrics = ProvideMetrics(cfg, reg)

	stores, closeStores, err := ProvideStores(cfg, zapLog)
	if err != nil {
		app.Stop()
		return nil, err
	}
	app.stores = stores
	app.closers = append(app.closers, closeStores)

	redis, closeRedis := ProvideRedisClient(cfg, zapLog)
	app.closers = append(app.closers, closeRedis)

	tokens := ProvideTokenManager(cfg)

	// Domain
	actors := ProvideActorQuery(cfg, stores, app.metrics, zapLog)
	resolver := ProvideRoleResolver(actors, stores, zapLog)
	reconciler := ProvideInviteReconciler(stores, zapLog)

	// Events
	handler := ProvideInviteAcceptedHandler(cfg, reconciler, app.metrics, zapLog)
	app.bus = ProvideEventBus(zapLog, handler)

	// HTTP
	roles := ProvideRoleAdapter(resolver, app.metrics)
	invites := ProvideInviteAdapter(cfg, app.bus, app.metrics, zapLog)
	app.router = ProvideRouter(cfg, log, reg, app.metrics, redis, tokens, roles, invites)

	// Event transports
	if err := app.initConsumers(); err != nil {
		app.Stop()
		return nil, err
	}

	return app, nil
}

// initConsumers connects the enabled message transports.
func (a *App) initConsumers() error {
	ev := a.config.Events

	if ev.Kafka.Enabled {
		kcfg := kafkaconsumer.Config{
			Brokers: ev.Kafka.Brokers,
			Topic:   ev.Kafka.Topic,
			GroupID: ev.Kafka.GroupID,
		}
		c := kafkaconsumer.NewConsumer(kafkaconsumer.NewReader(kcfg), a.bus, kcfg, a.metrics, a.logger.Named("kafka"))
		a.consumers[events.TransportKafka] = c
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	if ev.AMQP.Enabled {
		client, err := amqpconsumer.Dial(ev.AMQP.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.consumers[events.TransportAMQP] = amqpconsumer.NewConsumer(client.Channel(), a.bus, amqpconsumer.Config{
			Queue:        ev.AMQP.Queue,
			Prefetch:     ev.AMQP.Prefetch,
			RequeueDelay: time.Second,
		}, a.metrics, a.logger.Named("amqp"))
	}

	return nil
}

// Start runs the event consumers in the background until Stop.
func (a *App) Start(ctx context.Context) error {
	if a.cancel != nil {
		return errors.New("app already started")
	}
	ctx, a.cancel = context.WithCancel(ctx)

	for name, c := range a.consumers {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := c.Run(ctx); err != nil {
				a.logger.Error("event consumer exited", zap.String("transport", name), zap.Error(err))
			}
		}()
	}
	return nil
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops the consumers and releases resources in reverse order.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
