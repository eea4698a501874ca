// Package role resolves the administrative role of an actor and propagates
// the role of an accepted invite onto the user account it produced.
package role

import "github.com/storefront/server/internal/model"

// Role is an administrative role. The two values are not ordered.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBlogEditor Role = "blog_editor"
)

// MetadataKey is the reserved metadata key holding a role claim.
const MetadataKey = "role"

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBlogEditor:
		return true
	default:
		return false
	}
}

// FromMetadata decodes the role claim of a metadata mapping.
// Only the exact blog_editor string is significant; a missing map, a missing
// key, another string or a value of another type all decode to admin.
func FromMetadata(md model.Metadata) Role {
	return decodeClaim(md[MetadataKey])
}

// CarriesBlogEditor reports whether md names blog_editor directly.
func CarriesBlogEditor(md model.Metadata) bool {
	return FromMetadata(md) == RoleBlogEditor
}

func decodeClaim(v any) Role {
	if s, ok := v.(string); ok && s == string(RoleBlogEditor) {
		return RoleBlogEditor
	}
	return RoleAdmin
}
