package memory

import (
	"context"
	"time"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// inviteAdapter implements outbound.InviteDatabasePort.
type inviteAdapter struct {
	store *Store
}

// NewInviteAdapter creates a new in-memory invite adapter.
func NewInviteAdapter(store *Store) outbound.InviteDatabasePort {
	return &inviteAdapter{store: store}
}

func (a *inviteAdapter) FindByID(ctx context.Context, id string, includeDeleted bool) (*model.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	inv, ok := a.store.invites[id]
	if !ok || (inv.IsDeleted() && !includeDeleted) {
		return nil, role.ErrInviteNotFound
	}
	return copyInvite(inv), nil
}

func (a *inviteAdapter) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	out := make([]*model.Invite, 0)
	for _, inv := range a.store.invites {
		if !sameEmail(inv.Email, email) || (inv.IsDeleted() && !opts.IncludeDeleted) {
			continue
		}
		out = append(out, copyInvite(inv))
	}
	sortByCreated(out, opts.Order,
		func(i *model.Invite) time.Time { return i.CreatedAt },
		func(i *model.Invite) string { return i.ID },
	)
	return limit(out, opts.Limit), nil
}

var _ outbound.InviteDatabasePort = (*inviteAdapter)(nil)
