package outbound

import (
	"time"

	"github.com/storefront/server/internal/model"
)

// TokenClaims are the verified claims of a session token.
type TokenClaims struct {
	Subject      string
	Email        string
	AppMetadata  model.Metadata
	UserMetadata model.Metadata
	ExpiresAt    time.Time
}

// SessionTokenPort issues and validates session tokens.
type SessionTokenPort interface {
	// IssueToken signs a token carrying the given claims.
	IssueToken(claims *TokenClaims) (string, time.Time, error)

	// ValidateToken verifies a token and returns its claims.
	ValidateToken(token string) (*TokenClaims, error)
}
