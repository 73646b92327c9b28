package domain

import (
	"time"

	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type User struct {
	ID           idx.ID
	Name         string
	Email        string // normalized: trimmed, lowercased
	PasswordHash string // pbkdf2 encoded credential
	CreatedAt    time.Time
}

// DisplayName returns the user's name, falling back to their email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
