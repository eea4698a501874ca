package events

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/storefront/server/internal/domain/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_PublishRunsHandlersInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var order []string

	bus.Register(NewHandlerFunc([]string{InviteAcceptedType}, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	}))
	bus.Register(NewHandlerFunc([]string{InviteAcceptedType}, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	}))

	err := bus.Publish(context.Background(), NewInviteAcceptedEvent(&role.AcceptanceEvent{InviteID: "inv_1"}, "test"))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_PublishJoinsErrors(t *testing.T) {
	bus := NewBus(zap.NewNop())
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var ran int

	for _, e := range []error{errA, nil, errB} {
		e := e
		bus.Register(NewHandlerFunc([]string{InviteAcceptedType}, func(context.Context, Event) error {
			ran++
			return e
		}))
	}

	err := bus.Publish(context.Background(), NewInviteAcceptedEvent(nil, "test"))

	assert.Equal(t, 3, ran)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestBus_NoHandlers(t *testing.T) {
	bus := NewBus(nil)
	err := bus.Publish(context.Background(), NewInviteAcceptedEvent(nil, "test"))
	assert.ErrorIs(t, err, ErrNoHandlers)
}

func TestIsPermanent(t *testing.T) {
	err := NewBus(nil).Publish(context.Background(), NewInviteAcceptedEvent(nil, TransportKafka))
	assert.True(t, IsPermanent(err))
	assert.True(t, IsPermanent(fmt.Errorf("publish: %w", ErrNoHandlers)))
	assert.False(t, IsPermanent(role.ErrMetadataWrite))
	assert.False(t, IsPermanent(nil))
}

func TestNewInviteAcceptedEvent(t *testing.T) {
	ev := NewInviteAcceptedEvent(&role.AcceptanceEvent{ID: "inv_9"}, "kafka")

	assert.Equal(t, InviteAcceptedType, ev.EventType())
	assert.Equal(t, "inv_9", ev.AggregateID())
	assert.Equal(t, "invite", ev.AggregateType())
	assert.Equal(t, "kafka", ev.Transport)
	assert.NotEqual(t, [16]byte{}, [16]byte(ev.EventID()))
	assert.False(t, ev.OccurredAt().IsZero())

	empty := NewInviteAcceptedEvent(nil, "webhook")
	assert.NotNil(t, empty.Payload)
	assert.Empty(t, empty.AggregateID())
}
