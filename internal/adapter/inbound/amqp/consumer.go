package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// ErrDeliveriesClosed is returned by Run when the broker closed the
// delivery channel.
var ErrDeliveriesClosed = errors.New("amqp delivery channel closed")

// Config holds consumer settings.
type Config struct {
	Queue    string
	Prefetch int

	// RequeueDelay is waited before a failed delivery is handed back.
	RequeueDelay time.Duration
}

// Consumer feeds invite.accepted deliveries from RabbitMQ into the event
// bus with manual acknowledgement.
type Consumer struct {
	ch        Channel
	cfg       Config
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewConsumer creates a new AMQP consumer. m may be nil.
func NewConsumer(ch Channel, publisher events.Publisher, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 10
	}
	if cfg.RequeueDelay < 0 {
		cfg.RequeueDelay = 0
	}
	return &Consumer{
		ch:        ch,
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Run declares the durable queue and consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if _, err := c.ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	if err := c.ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	c.logger.Info("amqp consumer started", zap.String("queue", c.cfg.Queue))
	defer c.logger.Info("amqp consumer stopped", zap.String("queue", c.cfg.Queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks a handled delivery, drops an unparseable or permanently
// failing one and requeues any other failure.
func (c *Consumer) handle(ctx context.Context, d amqp091.Delivery) {
	log := c.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	payload, err := role.ParseAcceptanceEvent(d.Body)
	if err != nil {
		c.record("malformed")
		log.Warn("dropping malformed delivery", zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			log.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := c.publisher.Publish(ctx, events.NewInviteAcceptedEvent(payload, events.TransportAMQP)); err != nil {
		if events.IsPermanent(err) {
			c.record("dropped")
			log.Error("dropping delivery that cannot be handled", zap.Error(err))
			if err := d.Nack(false, false); err != nil {
				log.Error("nack failed", zap.Error(err))
			}
			return
		}
		c.record("failed")
		log.Error("handling delivery failed, requeueing", zap.Error(err))
		if c.cfg.RequeueDelay > 0 {
			t := time.NewTimer(c.cfg.RequeueDelay)
			select {
			case <-ctx.Done():
			case <-t.C:
			}
			t.Stop()
		}
		if err := d.Nack(false, true); err != nil {
			log.Error("nack failed", zap.Error(err))
		}
		return
	}

	c.record("ok")
	if err := d.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
}

func (c *Consumer) record(status string) {
	if c.metrics != nil {
		c.metrics.RecordEventConsumed(events.TransportAMQP, status)
	}
}
