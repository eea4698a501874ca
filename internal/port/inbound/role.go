package inbound

import "github.com/gin-gonic/gin"

// RoleHttpPort defines HTTP handler interface for role lookups.
type RoleHttpPort interface {
	// GetMyRole handles GET /admin/me/role
	GetMyRole(c *gin.Context)

	// GetUserRole handles GET /admin/users/:id/role
	GetUserRole(c *gin.Context)
}

// InviteHttpPort defines HTTP handler interface for invite acceptance.
type InviteHttpPort interface {
	// InviteAccepted handles POST /hooks/invite-accepted
	InviteAccepted(c *gin.Context)

	// ReplayAcceptance handles POST /admin/invites/reconcile
	ReplayAcceptance(c *gin.Context)
}
