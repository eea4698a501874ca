package role

import (
	"testing"

	"github.com/storefront/server/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   model.Metadata
		want Role
	}{
		{name: "nil map", md: nil, want: RoleAdmin},
		{name: "empty map", md: model.Metadata{}, want: RoleAdmin},
		{name: "missing key", md: model.Metadata{"theme": "dark"}, want: RoleAdmin},
		{name: "blog editor", md: model.Metadata{"role": "blog_editor"}, want: RoleBlogEditor},
		{name: "admin", md: model.Metadata{"role": "admin"}, want: RoleAdmin},
		{name: "upper case", md: model.Metadata{"role": "BLOG_EDITOR"}, want: RoleAdmin},
		{name: "padded", md: model.Metadata{"role": " blog_editor"}, want: RoleAdmin},
		{name: "null", md: model.Metadata{"role": nil}, want: RoleAdmin},
		{name: "number", md: model.Metadata{"role": 42}, want: RoleAdmin},
		{name: "float", md: model.Metadata{"role": 42.0}, want: RoleAdmin},
		{name: "bool", md: model.Metadata{"role": true}, want: RoleAdmin},
		{name: "typed role", md: model.Metadata{"role": RoleBlogEditor}, want: RoleAdmin},
		{name: "list", md: model.Metadata{"role": []any{"blog_editor"}}, want: RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMetadata(tt.md))
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleBlogEditor.IsValid())
	assert.False(t, Role("owner").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestMerge(t *testing.T) {
	t.Run("later layers win", func(t *testing.T) {
		user := model.Metadata{"theme": "dark", "role": "admin"}
		invite := model.Metadata{"source": "campaign-1", "theme": "light"}

		got := Merge(user, invite, Stamp(RoleBlogEditor))

		assert.Equal(t, model.Metadata{
			"theme":  "light",
			"source": "campaign-1",
			"role":   "blog_editor",
		}, got)
	})

	t.Run("inputs untouched", func(t *testing.T) {
		user := model.Metadata{"theme": "dark"}
		_ = Merge(user, Stamp(RoleAdmin))
		assert.Equal(t, model.Metadata{"theme": "dark"}, user)
	})

	t.Run("nil layers", func(t *testing.T) {
		got := Merge(nil, nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
