package domain

import "github.com/aussiebroadwan/litecrm/pkg/idx"

// Session is the explicit per-request context: who is acting, in which
// workspace, and with what role. It is passed to every scoped operation
// instead of living in ambient mutable state, so concurrent sessions cannot
// cross-contaminate.
type Session struct {
	UserID      idx.ID
	Email       string
	WorkspaceID idx.ID
	Role        Role
}

// IsAdmin reports whether the session holds the admin role in its active
// workspace.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
