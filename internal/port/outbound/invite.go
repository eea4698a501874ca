package outbound

import (
	"context"

	"github.com/storefront/server/internal/model"
)

// InviteDatabasePort defines invite persistence operations.
type InviteDatabasePort interface {
	// FindByID finds an invite by ID, optionally including soft-deleted rows.
	FindByID(ctx context.Context, id string, includeDeleted bool) (*model.Invite, error)

	// FindByEmail lists invites sent to the given email.
	FindByEmail(ctx context.Context, email string, opts ListOptions) ([]*model.Invite, error)
}
