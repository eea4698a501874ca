package memory

import (
	"context"
	"time"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// userAdapter implements outbound.UserDatabasePort.
type userAdapter struct {
	store *Store
}

// NewUserAdapter creates a new in-memory user adapter.
func NewUserAdapter(store *Store) outbound.UserDatabasePort {
	return &userAdapter{store: store}
}

func (a *userAdapter) FindByID(ctx context.Context, id string, fields ...string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	u, ok := a.store.users[id]
	if !ok || u.IsDeleted() {
		return nil, role.ErrUserNotFound
	}
	return project(copyUser(u), fields), nil
}

func (a *userAdapter) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	out := make([]*model.User, 0)
	for _, u := range a.store.users {
		if !sameEmail(u.Email, email) || (u.IsDeleted() && !opts.IncludeDeleted) {
			continue
		}
		out = append(out, copyUser(u))
	}
	sortByCreated(out, opts.Order,
		func(u *model.User) time.Time { return u.CreatedAt },
		func(u *model.User) string { return u.ID },
	)
	return limit(out, opts.Limit), nil
}

func (a *userAdapter) UpdateMetadata(ctx context.Context, id string, metadata model.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	u, ok := a.store.users[id]
	if !ok || u.IsDeleted() {
		return role.ErrUserNotFound
	}
	u.Metadata = metadata.Clone()
	u.UpdatedAt = a.store.now()
	a.store.writes++
	return nil
}

// project keeps only the selected columns, mirroring a SELECT list.
func project(u *model.User, fields []string) *model.User {
	if len(fields) == 0 {
		return u
	}
	out := &model.User{}
	for _, f := range fields {
		switch f {
		case "id":
			out.ID = u.ID
		case "email":
			out.Email = u.Email
		case "metadata":
			out.Metadata = u.Metadata
		case "first_name":
			out.FirstName = u.FirstName
		case "last_name":
			out.LastName = u.LastName
		case "avatar_url":
			out.AvatarURL = u.AvatarURL
		case "created_at":
			out.CreatedAt = u.CreatedAt
		case "updated_at":
			out.UpdatedAt = u.UpdatedAt
		}
	}
	return out
}

var _ outbound.UserDatabasePort = (*userAdapter)(nil)
