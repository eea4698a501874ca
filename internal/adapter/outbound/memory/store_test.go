package memory

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteAdapter_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	invites := NewInviteAdapter(s)

	s.PutInvite(&model.Invite{ID: "inv_1", Email: "a@example.com"})
	require.True(t, s.SoftDeleteInvite("inv_1"))

	_, err := invites.FindByID(ctx, "inv_1", false)
	assert.ErrorIs(t, err, role.ErrInviteNotFound)

	inv, err := invites.FindByID(ctx, "inv_1", true)
	require.NoError(t, err)
	assert.True(t, inv.IsDeleted())
	assert.True(t, inv.Accepted)

	list, err := invites.FindByEmail(ctx, "a@example.com", outbound.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = invites.FindByEmail(ctx, "A@example.com", outbound.ListOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInviteAdapter_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	invites := NewInviteAdapter(s)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.PutInvite(&model.Invite{ID: "old", Email: "a@example.com", CreatedAt: base})
	s.PutInvite(&model.Invite{ID: "new", Email: "a@example.com", CreatedAt: base.Add(time.Hour)})

	list, err := invites.FindByEmail(ctx, "a@example.com", outbound.ListOptions{Limit: 1, Order: outbound.SortNewestFirst})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)

	list, err = invites.FindByEmail(ctx, "a@example.com", outbound.ListOptions{Order: outbound.SortOldestFirst})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "old", list[0].ID)
}

func TestUserAdapter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	users := NewUserAdapter(s)

	s.PutUser(&model.User{ID: "usr_1", Email: "a@example.com", FirstName: "Ada", Metadata: model.Metadata{"theme": "dark"}})

	t.Run("projection", func(t *testing.T) {
		u, err := users.FindByID(ctx, "usr_1", "id", "metadata")
		require.NoError(t, err)
		assert.Equal(t, "usr_1", u.ID)
		assert.Empty(t, u.Email)
		assert.Empty(t, u.FirstName)
		assert.Equal(t, "dark", u.Metadata["theme"])
	})

	t.Run("returned copies are detached", func(t *testing.T) {
		u, err := users.FindByID(ctx, "usr_1")
		require.NoError(t, err)
		u.Metadata["theme"] = "light"

		again, _ := s.User("usr_1")
		assert.Equal(t, "dark", again.Metadata["theme"])
	})

	t.Run("update metadata", func(t *testing.T) {
		require.NoError(t, users.UpdateMetadata(ctx, "usr_1", model.Metadata{"role": "blog_editor"}))
		u, _ := s.User("usr_1")
		assert.Equal(t, model.Metadata{"role": "blog_editor"}, u.Metadata)
		assert.Equal(t, 1, s.MetadataWrites())
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := users.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, role.ErrUserNotFound)
		assert.ErrorIs(t, users.UpdateMetadata(ctx, "nope", nil), role.ErrUserNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := users.FindByID(cctx, "usr_1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestActorQueryAdapter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	actors := NewActorQueryAdapter(s)

	s.PutUser(&model.User{ID: "usr_1", Metadata: model.Metadata{"role": "blog_editor"}})
	s.LinkIdentity("auth_1", "usr_1")

	md, err := actors.ActorMetadata(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "blog_editor", md["role"])

	md, err = actors.ActorMetadata(ctx, "auth_1")
	require.NoError(t, err)
	assert.Equal(t, "blog_editor", md["role"])

	_, err = actors.ActorMetadata(ctx, "auth_2")
	assert.ErrorIs(t, err, role.ErrActorNotFound)
}
