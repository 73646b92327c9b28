package domain

import (
	"time"

	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// Invite is a pending, single-use offer of membership. The token travels
// out-of-band as a ?invite=<token> link; AcceptedAt is set exactly once.
type Invite struct {
	ID          idx.ID
	Email       string // normalized invitee email
	WorkspaceID idx.ID
	Role        Role
	Token       string
	CreatedAt   time.Time
	AcceptedAt  *time.Time
}

// Consumed reports whether the invite has already been accepted.
func (i Invite) Consumed() bool { return i.AcceptedAt != nil }
