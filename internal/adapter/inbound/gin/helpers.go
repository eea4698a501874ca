package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/utils/middleware"
)

// sessionFromContext returns the token subject and its claim bags. Both are
// empty when the request is unauthenticated.
func sessionFromContext(c *gin.Context) (string, role.SessionClaims) {
	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		return middleware.GetUserID(c), role.SessionClaims{}
	}
	return claims.Subject, role.SessionClaims{
		AppMetadata:  claims.AppMetadata,
		UserMetadata: claims.UserMetadata,
	}
}
