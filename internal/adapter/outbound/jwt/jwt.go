// Package jwt signs and verifies HS256 session tokens carrying the two
// metadata claim bags the role resolver reads.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Config holds token configuration.
type Config struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// DefaultConfig returns default token configuration.
func DefaultConfig() *Config {
	return &Config{
		Issuer:            "storefront",
		AccessTokenExpiry: 15 * time.Minute,
	}
}

// manager implements outbound.SessionTokenPort.
type manager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewManager creates a new session token manager.
func NewManager(cfg *Config) outbound.SessionTokenPort {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	expiry := cfg.AccessTokenExpiry
	if expiry <= 0 {
		expiry = DefaultConfig().AccessTokenExpiry
	}
	return &manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

// IssueToken generates a signed token.
func (m *manager) IssueToken(c *outbound.TokenClaims) (string, time.Time, error) {
	if c == nil || c.Subject == "" {
		return "", time.Time{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	now := m.now()
	expiresAt := now.Add(m.expiry)

	claims := gojwt.MapClaims{
		"sub": c.Subject,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}
	if c.Email != "" {
		claims["email"] = c.Email
	}
	if c.AppMetadata != nil {
		claims["app_metadata"] = map[string]any(c.AppMetadata)
	}
	if c.UserMetadata != nil {
		claims["user_metadata"] = map[string]any(c.UserMetadata)
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a token and extracts its claims.
func (m *manager) ValidateToken(tokenString string) (*outbound.TokenClaims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(m.issuer))
	}

	token, err := gojwt.Parse(tokenString, func(token *gojwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	out := &outbound.TokenClaims{
		Subject:      sub,
		Email:        email,
		AppMetadata:  metadataClaim(claims["app_metadata"]),
		UserMetadata: metadataClaim(claims["user_metadata"]),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// metadataClaim keeps object-valued claims and drops anything else.
func metadataClaim(v any) model.Metadata {
	if m, ok := v.(map[string]any); ok {
		return model.Metadata(m)
	}
	return nil
}

// Compile-time check
var _ outbound.SessionTokenPort = (*manager)(nil)
