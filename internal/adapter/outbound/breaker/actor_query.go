// Package breaker wraps the cross-entity actor query in a circuit breaker.
// An open breaker fails fast into the resolver's direct-record path.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"go.uber.org/zap"
)

// Config holds circuit breaker configuration.
type Config struct {
	Timeout          time.Duration // per-call deadline, 0 disables
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // how long the breaker stays open
	HalfOpenRequests uint32
}

// DefaultConfig returns default breaker configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:          2 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// StateObserver is told about every state transition.
type StateObserver func(state gobreaker.State)

// actorQueryBreaker implements outbound.ActorQueryPort around another one.
type actorQueryBreaker struct {
	next    outbound.ActorQueryPort
	cb      *gobreaker.CircuitBreaker[model.Metadata]
	timeout time.Duration
}

// NewActorQuery wraps next in a circuit breaker. A not-found answer is a
// healthy response and never trips the breaker.
func NewActorQuery(next outbound.ActorQueryPort, cfg *Config, logger *zap.Logger, observe StateObserver) outbound.ActorQueryPort {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "actor_query",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, role.ErrActorNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if observe != nil {
				observe(to)
			}
		},
	}

	return &actorQueryBreaker{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[model.Metadata](settings),
		timeout: cfg.Timeout,
	}
}

func (b *actorQueryBreaker) ActorMetadata(ctx context.Context, actorID string) (model.Metadata, error) {
	return b.cb.Execute(func() (model.Metadata, error) {
		callCtx := ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		return b.next.ActorMetadata(callCtx, actorID)
	})
}

// Compile-time check
var _ outbound.ActorQueryPort = (*actorQueryBreaker)(nil)
