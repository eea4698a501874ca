package role

import "github.com/storefront/server/internal/model"

// SessionClaims are the claim bags attached to the current session.
// AppMetadata is checked before UserMetadata.
type SessionClaims struct {
	AppMetadata  model.Metadata
	UserMetadata model.Metadata
}

// IsEmpty reports whether neither location carries anything.
func (c SessionClaims) IsEmpty() bool {
	return len(c.AppMetadata) == 0 && len(c.UserMetadata) == 0
}
