package domain

import (
	"time"

	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// PasswordResetTTL is how long a reset token stays valid after issuance.
// This is a data-level expiry, not an in-flight timeout.
const PasswordResetTTL = 60 * time.Minute

// PasswordReset is a single-use token that allows a user to set a new
// password. UsedAt is set exactly once.
type PasswordReset struct {
	ID        idx.ID
	UserID    idx.ID
	Token     string
	CreatedAt time.Time
	UsedAt    *time.Time
}

// Expired reports whether the token is past its validity window at now.
func (p PasswordReset) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PasswordResetTTL
}
