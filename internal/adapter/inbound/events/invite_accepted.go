package events

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/utils/metrics"
	"github.com/storefront/server/internal/utils/requestctx"
	"go.uber.org/zap"
)

// DefaultHandlerTimeout bounds one reconciliation when none is configured.
const DefaultHandlerTimeout = 10 * time.Second

// InviteAcceptedHandler reconciles invite.accepted events.
type InviteAcceptedHandler struct {
	reconciler role.InviteReconciler
	metrics    *metrics.Metrics
	timeout    time.Duration
	logger     *zap.Logger
}

// NewInviteAcceptedHandler creates a new invite accepted handler. m may be nil.
func NewInviteAcceptedHandler(reconciler role.InviteReconciler, m *metrics.Metrics, timeout time.Duration, logger *zap.Logger) *InviteAcceptedHandler {
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteAcceptedHandler{
		reconciler: reconciler,
		metrics:    m,
		timeout:    timeout,
		logger:     logger,
	}
}

// Handles returns the event types this handler processes.
func (h *InviteAcceptedHandler) Handles() []string {
	return []string{events.InviteAcceptedType}
}

// Handle reconciles one acceptance. The returned error is non-nil only when
// the metadata write failed; redelivering the event is then safe.
func (h *InviteAcceptedHandler) Handle(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.InviteAcceptedEvent)
	if !ok {
		h.logger.Warn("unexpected event payload",
			zap.String("event_type", event.EventType()),
			zap.String("go_type", fmt.Sprintf("%T", event)),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	rec, err := h.reconciler.Reconcile(ctx, ev.Payload)
	ev.Result = rec

	if h.metrics != nil {
		h.metrics.RecordEventHandled(events.InviteAcceptedType, time.Since(start))
		if rec != nil {
			h.metrics.RecordReconciliation(string(rec.Outcome))
		}
	}

	fields := []zap.Field{
		zap.String("event_id", ev.EventID().String()),
		zap.String("transport", ev.Transport),
	}
	if id := requestctx.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	if err != nil {
		h.logger.Error("invite acceptance not reconciled", append(fields, zap.Error(err))...)
		return err
	}
	if rec != nil {
		h.logger.Debug("invite acceptance handled", append(fields, zap.String("outcome", string(rec.Outcome)))...)
	}
	return nil
}

var _ events.Handler = (*InviteAcceptedHandler)(nil)
