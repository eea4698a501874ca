package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// actorMetadataQuery resolves an actor to its user row. The actor id is
// either the user id itself or an auth identity linked through
// app_metadata.user_id.
const actorMetadataQuery = `
SELECT u.metadata
FROM users u
LEFT JOIN auth_identities ai
  ON ai.app_metadata ->> 'user_id' = u.id
 AND ai.deleted_at IS NULL
WHERE u.deleted_at IS NULL
  AND (u.id = $1 OR ai.id = $1)
ORDER BY (u.id = $1) DESC
LIMIT 1`

// actorQueryAdapter implements outbound.ActorQueryPort over database/sql.
type actorQueryAdapter struct {
	db *sql.DB
}

// NewActorQueryAdapter creates a new actor query adapter. db is expected to
// be opened with the lib/pq driver.
func NewActorQueryAdapter(db *sql.DB) outbound.ActorQueryPort {
	return &actorQueryAdapter{db: db}
}

func (a *actorQueryAdapter) ActorMetadata(ctx context.Context, actorID string) (model.Metadata, error) {
	var raw []byte
	err := a.db.QueryRowContext(ctx, actorMetadataQuery, actorID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, role.ErrActorNotFound
		}
		return nil, fmt.Errorf("query actor metadata: %w", err)
	}
	return decodeMetadata(raw)
}

// decodeMetadata parses a jsonb column. SQL NULL and JSON null decode to an
// empty mapping; any non-object value is an error.
func decodeMetadata(raw []byte) (model.Metadata, error) {
	if len(raw) == 0 {
		return model.Metadata{}, nil
	}
	var md model.Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("decode actor metadata: %w", err)
	}
	if md == nil {
		md = model.Metadata{}
	}
	return md, nil
}

// Compile-time check
var _ outbound.ActorQueryPort = (*actorQueryAdapter)(nil)
