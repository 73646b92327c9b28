package domain

import (
	"time"

	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// Role is a member's role within a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Workspace is the tenancy boundary. Every domain record belongs to exactly
// one workspace.
type Workspace struct {
	ID          idx.ID
	Name        string
	OwnerUserID idx.ID // Zero when the owning user has been deleted
	CreatedAt   time.Time
}

// Membership joins a user to a workspace with a role.
// Unique per (user, workspace) pair.
type Membership struct {
	ID          idx.ID
	UserID      idx.ID
	WorkspaceID idx.ID
	Role        Role
	CreatedAt   time.Time
}

// Member is a membership row joined with its user, for workspace admin views.
type Member struct {
	Email    string
	Name     string
	Role     Role
	JoinedAt time.Time
}

// UserWorkspace is a workspace joined with the member's role, for the
// workspace switcher and default workspace selection.
type UserWorkspace struct {
	WorkspaceID idx.ID
	Name        string
	Role        Role
	CreatedAt   time.Time // workspace creation time, the default-workspace sort key
}
