package events

import (
	"github.com/storefront/server/internal/domain/role"
)

// InviteAcceptedType is the event type of an accepted invite.
const InviteAcceptedType = "invite.accepted"

// Transports an acceptance can arrive on.
const (
	TransportWebhook = "webhook"
	TransportKafka   = "kafka"
	TransportAMQP    = "amqp"
	TransportReplay  = "replay"
)

// InviteAcceptedEvent is published once per delivery of an acceptance,
// whatever transport it arrived on.
type InviteAcceptedEvent struct {
	BaseEvent

	// Payload is the acceptance as the producer sent it.
	Payload *role.AcceptanceEvent `json:"payload"`

	// Transport names where the event came from (webhook, kafka, amqp, replay).
	Transport string `json:"transport"`

	// Result is filled in by the reconciling handler.
	Result *role.Reconciliation `json:"result,omitempty"`
}

// NewInviteAcceptedEvent creates a new InviteAcceptedEvent.
func NewInviteAcceptedEvent(payload *role.AcceptanceEvent, transport string) *InviteAcceptedEvent {
	if payload == nil {
		payload = &role.AcceptanceEvent{}
	}
	aggregateID := payload.InviteID.String()
	if aggregateID == "" {
		aggregateID = payload.ID.String()
	}
	return &InviteAcceptedEvent{
		BaseEvent: NewBaseEvent(InviteAcceptedType, aggregateID, "invite"),
		Payload:   payload,
		Transport: transport,
	}
}
