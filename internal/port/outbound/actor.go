package outbound

import (
	"context"

	"github.com/storefront/server/internal/model"
)

// ActorQueryPort reads an actor's metadata through a cross-entity query.
// It is a different access route than UserDatabasePort.FindByID.
type ActorQueryPort interface {
	// ActorMetadata returns the metadata of the user behind actorID.
	ActorMetadata(ctx context.Context, actorID string) (model.Metadata, error)
}
