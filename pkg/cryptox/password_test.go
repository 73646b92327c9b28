package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func derive(password string, salt []byte, iters int) string {
	key := pbkdf2.Key([]byte(password), salt, iters, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	require.True(t, VerifyPassword("correct horse battery staple", hash))
	require.False(t, VerifyPassword("correct horse battery stapler", hash))
	require.False(t, VerifyPassword("", hash))
}

func TestHashPasswordFormat(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	require.Equal(t, "pbkdf2", parts[0])
	require.Equal(t, "sha256", parts[1])
	require.Equal(t, "120000", parts[2])
}

func TestHashPasswordNonDeterministic(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("secret")
	require.NoError(t, err)
	b, err := HashPassword("secret")
	require.NoError(t, err)

	// Fresh salt per call, but both credentials verify.
	require.NotEqual(t, a, b)
	require.True(t, VerifyPassword("secret", a))
	require.True(t, VerifyPassword("secret", b))
}

func TestVerifyPasswordFailsClosed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not delimited", "plaintext"},
		{"wrong prefix", "bcrypt$sha256$120000$c2FsdA==$aGFzaA=="},
		{"unknown digest", "pbkdf2$md5$120000$c2FsdA==$aGFzaA=="},
		{"bad iterations", "pbkdf2$sha256$lots$c2FsdA==$aGFzaA=="},
		{"negative iterations", "pbkdf2$sha256$-1$c2FsdA==$aGFzaA=="},
		{"bad salt b64", "pbkdf2$sha256$120000$!!!$aGFzaA=="},
		{"bad key b64", "pbkdf2$sha256$120000$c2FsdA==$!!!"},
		{"empty key", "pbkdf2$sha256$120000$c2FsdA==$"},
		{"too many parts", "pbkdf2$sha256$120000$c2FsdA==$$aGFzaA=="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.False(t, VerifyPassword("secret", tc.encoded))
		})
	}
}

func TestVerifyPasswordHonoursStoredParameters(t *testing.T) {
	t.Parallel()

	// A credential minted with different (lower) iteration counts must still
	// verify, so iteration bumps stay backward-compatible.
	legacy := "pbkdf2$sha256$1000$AAAAAAAAAAAAAAAAAAAAAA==$"
	key := derive("secret", make([]byte, 16), 1000)
	require.True(t, VerifyPassword("secret", legacy+key))
	require.False(t, VerifyPassword("wrong", legacy+key))
}
