package role

import (
	"context"

	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"github.com/stretchr/testify/mock"
)

// --- Mock implementations ---

type MockActorQueryPort struct {
	mock.Mock
}

func (m *MockActorQueryPort) ActorMetadata(ctx context.Context, actorID string) (model.Metadata, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Metadata), args.Error(1)
}

type MockUserDatabasePort struct {
	mock.Mock
}

func (m *MockUserDatabasePort) FindByID(ctx context.Context, id string, fields ...string) (*model.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserDatabasePort) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.User, error) {
	args := m.Called(ctx, email, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserDatabasePort) UpdateMetadata(ctx context.Context, id string, metadata model.Metadata) error {
	args := m.Called(ctx, id, metadata)
	return args.Error(0)
}

type MockInviteDatabasePort struct {
	mock.Mock
}

func (m *MockInviteDatabasePort) FindByID(ctx context.Context, id string, includeDeleted bool) (*model.Invite, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invite), args.Error(1)
}

func (m *MockInviteDatabasePort) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.Invite, error) {
	args := m.Called(ctx, email, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invite), args.Error(1)
}

var (
	_ outbound.ActorQueryPort     = (*MockActorQueryPort)(nil)
	_ outbound.UserDatabasePort   = (*MockUserDatabasePort)(nil)
	_ outbound.InviteDatabasePort = (*MockInviteDatabasePort)(nil)
)

var metadataFields = []string{"id", "metadata"}
