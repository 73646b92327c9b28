package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. Iterations follow the OWASP baseline for
// PBKDF2-HMAC-SHA256. Verification reads the parameters back out of the
// stored credential, so these can be raised without breaking old hashes.
const (
	pbkdfAlg   = "sha256"
	pbkdfIter  = 120_000
	saltLength = 16
	keyLength  = 32
)

// HashPassword derives a salted PBKDF2 key from the password and returns a
// self-describing credential string:
//
//	pbkdf2$<alg>$<iterations>$<salt b64>$<key b64>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdfIter, keyLength, sha256.New)

	return fmt.Sprintf(
		"pbkdf2$%s$%d$%s$%s",
		pbkdfAlg,
		pbkdfIter,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword re-derives the key using the parameters stored in the
// credential and compares in constant time. Malformed credentials verify as
// false rather than erroring; a corrupt row must never take down a login.
func VerifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "pbkdf2" {
		return false
	}

	hashFn := hashForName(parts[1])
	if hashFn == nil {
		return false
	}

	iters, err := strconv.Atoi(parts[2])
	if err != nil || iters <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, iters, len(expected), hashFn)
	return hmac.Equal(key, expected)
}

func hashForName(name string) func() hash.Hash {
	switch name {
	case "sha256":
		return sha256.New
	case "sha512":
		return sha512.New
	default:
		return nil
	}
}
