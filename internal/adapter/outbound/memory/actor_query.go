package memory

import (
	"context"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// actorQueryAdapter implements outbound.ActorQueryPort. The actor id may be
// a user id or a linked auth identity id.
type actorQueryAdapter struct {
	store *Store
}

// NewActorQueryAdapter creates a new in-memory actor query adapter.
func NewActorQueryAdapter(store *Store) outbound.ActorQueryPort {
	return &actorQueryAdapter{store: store}
}

func (a *actorQueryAdapter) ActorMetadata(ctx context.Context, actorID string) (model.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	userID := actorID
	if linked, ok := a.store.identities[actorID]; ok {
		userID = linked
	}
	u, ok := a.store.users[userID]
	if !ok || u.IsDeleted() {
		return nil, role.ErrActorNotFound
	}
	return u.Metadata.Clone(), nil
}

var _ outbound.ActorQueryPort = (*actorQueryAdapter)(nil)
