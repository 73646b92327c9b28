package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSizeInvite is the entropy behind workspace invite links.
	TokenSizeInvite = 20
	// TokenSizeReset is the entropy behind password reset links.
	TokenSizeReset = 24
)

// GenerateToken creates a cryptographically secure random token of the given
// byte length, encoded base64url without padding so it survives being pasted
// into a query parameter.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
