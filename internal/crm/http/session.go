package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

// DefaultSessionTTL bounds how long a minted session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

var ErrInvalidSession = errors.New("invalid session token")

type ctxKeySession struct{}

// sessionClaims is the JWT payload for a signed-in session. The active
// workspace and role ride inside the token, so switching workspaces means
// minting a fresh token.
type sessionClaims struct {
	jwt.RegisteredClaims

	Email       string `json:"email"`
	WorkspaceID string `json:"wid"`
	Role        string `json:"role"`
}

// SessionSigner mints and verifies HS256 session tokens.
type SessionSigner struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Mint signs a session into a compact JWT.
func (s *SessionSigner) Mint(session domain.Session) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       session.Email,
		WorkspaceID: session.WorkspaceID.String(),
		Role:        string(session.Role),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verify parses and validates a token, returning the session it carries.
func (s *SessionSigner) Verify(token string) (domain.Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.Secret, nil
	},
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.Session{}, ErrInvalidSession
	}

	userID, err := idx.Parse(claims.Subject)
	if err != nil {
		return domain.Session{}, ErrInvalidSession
	}

	session := domain.Session{
		UserID: userID,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
	}
	if claims.WorkspaceID != "" {
		workspaceID, err := idx.Parse(claims.WorkspaceID)
		if err != nil {
			return domain.Session{}, ErrInvalidSession
		}
		session.WorkspaceID = workspaceID
	}

	return session, nil
}

// AuthMiddleware verifies the Bearer token and stashes the session in the
// request context. Requests without a valid token get a 401.
func AuthMiddleware(signer *SessionSigner) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			session, err := signer.Verify(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the authenticated session placed by
// AuthMiddleware.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(ctxKeySession{}).(domain.Session)
	return session, ok
}

// RequireWorkspace rejects sessions not bound to a workspace. Tokens minted
// before the user joined any workspace land here.
func RequireWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok || session.WorkspaceID.IsZero() {
			httpx.WriteError(w, http.StatusForbidden, "no_workspace", "session is not bound to a workspace")
			return
		}
		next.ServeHTTP(w, r)
	})
}
