package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// Reader is the part of *kafkago.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config holds consumer settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string

	// RetryBackoff is the first wait before a failed message is retried.
	// It doubles up to MaxBackoff.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
}

// NewReader creates a consumer group reader for cfg.
func NewReader(cfg Config) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Consumer feeds invite.accepted messages from Kafka into the event bus.
// An offset is committed only once its message was handled, found to be
// unparseable, or failed permanently, so a crash mid-handling leads to
// redelivery.
type Consumer struct {
	reader    Reader
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	backoff    time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a new Kafka consumer. m may be nil.
func NewConsumer(reader Reader, publisher events.Publisher, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.RetryBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Consumer{
		reader:     reader,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		backoff:    cfg.RetryBackoff,
		maxBackoff: cfg.MaxBackoff,
	}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer started")
	defer c.logger.Info("kafka consumer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("fetch message failed", zap.Error(err))
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("commit offset failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// process handles one message, retrying failures with backoff. It reports
// false when ctx ended before the message was handled.
func (c *Consumer) process(ctx context.Context, msg kafkago.Message) bool {
	payload, err := role.ParseAcceptanceEvent(msg.Value)
	if err != nil {
		c.record("malformed")
		c.logger.Warn("dropping malformed message",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	wait := c.backoff
	for {
		ev := events.NewInviteAcceptedEvent(payload, events.TransportKafka)
		err := c.publisher.Publish(ctx, ev)
		if err == nil {
			c.record("ok")
			return true
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return false
		}
		if events.IsPermanent(err) {
			c.record("dropped")
			c.logger.Error("dropping message that cannot be handled",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return true
		}

		c.record("failed")
		c.logger.Error("handling message failed, will retry",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if !sleep(ctx, wait) {
			return false
		}
		wait = min(wait*2, c.maxBackoff)
	}
}

func (c *Consumer) record(status string) {
	if c.metrics != nil {
		c.metrics.RecordEventConsumed(events.TransportKafka, status)
	}
}

// sleep waits for d or until ctx ends, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Reader = (*kafkago.Reader)(nil)
