package gin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/port/inbound"
	"github.com/storefront/server/internal/utils/metrics"
)

// RoleAdapter implements inbound.RoleHttpPort.
type RoleAdapter struct {
	resolver role.RoleResolver
	metrics  *metrics.Metrics
}

// NewRoleAdapter creates a new role HTTP adapter. m may be nil.
func NewRoleAdapter(resolver role.RoleResolver, m *metrics.Metrics) *RoleAdapter {
	return &RoleAdapter{resolver: resolver, metrics: m}
}

// RegisterRoutes registers role routes. The group is expected to require auth.
func (a *RoleAdapter) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me/role", a.GetMyRole)
	r.GET("/users/:id/role", a.GetUserRole)
}

// GetMyRole resolves the caller's role from the token subject and claims.
//
//	@Summary		Get my role
//	@Description	Resolve the caller's admin role from the stored actor metadata, falling back to session claims
//	@Tags			Roles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	role.Resolution
//	@Failure		401	{object}	model.ErrorResponse
//	@Router			/api/v1/admin/me/role [get]
func (a *RoleAdapter) GetMyRole(c *gin.Context) {
	actorID, claims := sessionFromContext(c)
	a.respond(c, a.resolver.ResolveDetailed(c.Request.Context(), actorID, claims))
}

// GetUserRole resolves another actor's role. No session claims apply.
//
//	@Summary		Get user role
//	@Description	Resolve the admin role of a user or auth identity
//	@Tags			Roles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User or auth identity ID"
//	@Success		200	{object}	role.Resolution
//	@Failure		401	{object}	model.ErrorResponse
//	@Router			/api/v1/admin/users/{id}/role [get]
func (a *RoleAdapter) GetUserRole(c *gin.Context) {
	actorID := strings.TrimSpace(c.Param("id"))
	a.respond(c, a.resolver.ResolveDetailed(c.Request.Context(), actorID, role.SessionClaims{}))
}

func (a *RoleAdapter) respond(c *gin.Context, res role.Resolution) {
	if a.metrics != nil {
		a.metrics.RecordRoleResolution(res.Role.String(), string(res.Source))
	}
	c.JSON(http.StatusOK, res)
}

// Compile-time check
var _ inbound.RoleHttpPort = (*RoleAdapter)(nil)
