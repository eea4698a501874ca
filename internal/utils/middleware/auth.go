package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for the token subject.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
	// ClaimsKey is the context key for the verified token claims.
	ClaimsKey = "session_claims"
)

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*outbound.TokenClaims, error)
}

// Auth returns a middleware that validates session tokens.
// If the token is valid, it sets the subject, email and claims in the context.
// If optional is true, the middleware will not abort on missing/invalid tokens.
func Auth(validator TokenValidator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
					Code:    "unauthorized",
					Message: "Authorization header required",
				})
				return
			}
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
					Code:    "invalid_token",
					Message: "Invalid or expired token",
				})
				return
			}
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid session token.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return Auth(validator, false)
}

// OptionalAuth returns a middleware that optionally validates session tokens.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return Auth(validator, true)
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
}

// GetUserID returns the token subject, or "" when unauthenticated.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetEmail returns the email from context.
// Returns empty string if not found.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

// GetSessionClaims returns the verified claims, or nil when unauthenticated.
func GetSessionClaims(c *gin.Context) *outbound.TokenClaims {
	if val, exists := c.Get(ClaimsKey); exists {
		if claims, ok := val.(*outbound.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

// IsAuthenticated returns true if the caller presented a valid token.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}
