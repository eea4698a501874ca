package gin

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/inbound"
	"github.com/storefront/server/internal/utils/metrics"
	"go.uber.org/zap"
)

const (
	// WebhookSecretHeader carries the shared webhook secret.
	WebhookSecretHeader = "X-Webhook-Secret"

	// maxEventBytes caps an acceptance event body.
	maxEventBytes = 1 << 20
)

// InviteConfig configures the invite acceptance routes.
type InviteConfig struct {
	// WebhookSecret, when set, must match the X-Webhook-Secret header.
	WebhookSecret string
}

// InviteAdapter implements inbound.InviteHttpPort.
type InviteAdapter struct {
	publisher events.Publisher
	cfg       InviteConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewInviteAdapter creates a new invite HTTP adapter. m may be nil.
func NewInviteAdapter(publisher events.Publisher, cfg InviteConfig, m *metrics.Metrics, logger *zap.Logger) *InviteAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteAdapter{
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterHookRoutes registers the webhook route. The secret is checked
// before any of mw runs.
func (a *InviteAdapter) RegisterHookRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{a.RequireWebhookSecret()}, mw...)
	r.POST("/invite-accepted", append(handlers, a.InviteAccepted)...)
}

// RequireWebhookSecret rejects deliveries whose X-Webhook-Secret header does
// not match the configured secret. With no secret configured it is a no-op.
func (a *InviteAdapter) RequireWebhookSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.secretMatches(c.GetHeader(WebhookSecretHeader)) {
			a.recordConsumed("unauthorized")
			handleError(c, ErrWebhookSecret)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RegisterAdminRoutes registers the operator routes. The group is expected
// to require auth.
func (a *InviteAdapter) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/invites/reconcile", a.ReplayAcceptance)
}

// InviteAccepted receives an acceptance event from the auth provider.
// 400 is final; 500 asks the sender to redeliver.
//
//	@Summary		Invite accepted webhook
//	@Description	Reconcile the role of an accepted invite onto the user it produced
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		WebhookSecret
//	@Param			Idempotency-Key	header		string					false	"Delivery ID used to drop duplicates"
//	@Param			request			body		role.AcceptanceEvent	true	"Acceptance event, bare or wrapped in {name, data}"
//	@Success		202				{object}	model.SuccessResponse
//	@Failure		400				{object}	model.ErrorResponse
//	@Failure		401				{object}	model.ErrorResponse
//	@Failure		409				{object}	model.ErrorResponse
//	@Failure		500				{object}	model.ErrorResponse
//	@Router			/hooks/invite-accepted [post]
func (a *InviteAdapter) InviteAccepted(c *gin.Context) {
	ev, err := a.readEvent(c, events.TransportWebhook)
	if err != nil {
		a.recordConsumed("malformed")
		handleError(c, err)
		return
	}

	if err := a.publisher.Publish(c.Request.Context(), ev); err != nil {
		a.recordConsumed("failed")
		handleError(c, err)
		return
	}

	a.recordConsumed("ok")
	c.JSON(http.StatusAccepted, model.SuccessResponse{
		Message: "accepted",
		Data:    gin.H{"event_id": ev.EventID().String()},
	})
}

// ReplayAcceptance publishes an operator supplied acceptance and returns
// what the reconciler did with it.
//
//	@Summary		Replay invite acceptance
//	@Description	Run an acceptance event through reconciliation and return the outcome
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		role.AcceptanceEvent	true	"Acceptance event"
//	@Success		200		{object}	role.Reconciliation
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		500		{object}	model.ErrorResponse
//	@Router			/api/v1/admin/invites/reconcile [post]
func (a *InviteAdapter) ReplayAcceptance(c *gin.Context) {
	ev, err := a.readEvent(c, events.TransportReplay)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := a.publisher.Publish(c.Request.Context(), ev); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ev.Result)
}

func (a *InviteAdapter) readEvent(c *gin.Context, transport string) (*events.InviteAcceptedEvent, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", role.ErrInvalidEvent, err)
	}
	payload, err := role.ParseAcceptanceEvent(body)
	if err != nil {
		a.logger.Warn("rejected invite accepted event",
			zap.String("transport", transport),
			zap.Error(err),
		)
		return nil, err
	}
	return events.NewInviteAcceptedEvent(payload, transport), nil
}

func (a *InviteAdapter) secretMatches(got string) bool {
	if a.cfg.WebhookSecret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.cfg.WebhookSecret)) == 1
}

func (a *InviteAdapter) recordConsumed(status string) {
	if a.metrics != nil {
		a.metrics.RecordEventConsumed(events.TransportWebhook, status)
	}
}

// Compile-time check
var _ inbound.InviteHttpPort = (*InviteAdapter)(nil)
