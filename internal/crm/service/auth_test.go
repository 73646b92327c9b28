package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/cryptox"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates user with a default workspace", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		user, session, err := svc.Register(ctx, "Alice", "Alice@Example.com ", "hunter22")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.True(t, strings.HasPrefix(user.PasswordHash, "pbkdf2$sha256$"))

		require.Equal(t, user.ID, session.UserID)
		require.Equal(t, domain.RoleAdmin, session.Role)
		require.False(t, session.WorkspaceID.IsZero())

		workspace, err := st.Workspaces().GetWorkspaceByID(ctx, session.WorkspaceID)
		require.NoError(t, err)
		require.Equal(t, "Alice's Workspace", workspace.Name)
		require.Equal(t, user.ID, workspace.OwnerUserID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		_, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter22")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "Imposter", "ALICE@example.com", "other")
		require.ErrorIs(t, err, ErrDuplicateEmail)

		// The failed registration must not leave an orphan workspace behind.
		_, err = st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		_, _, err := svc.Register(ctx, "Alice", "", "hunter22")
		require.ErrorIs(t, err, ErrValidation)

		_, _, err = svc.Register(ctx, "Alice", "alice@example.com", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("consumes a pending invite instead of creating a workspace", func(t *testing.T) {
		st := newTestStore(t)
		authSvc := &AuthService{Store: st}
		wsSvc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")
		token, err := wsSvc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		_, session, err := authSvc.Register(ctx, "Bob", "bob@example.com", "hunter22")
		require.NoError(t, err)
		require.Equal(t, admin.WorkspaceID, session.WorkspaceID)
		require.Equal(t, domain.RoleMember, session.Role)

		// The invite is spent; previewing it now fails.
		_, err = wsSvc.InviteByToken(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)

		// Bob belongs only to the invited workspace.
		workspaces, err := st.Memberships().ListUserWorkspaces(ctx, session.UserID)
		require.NoError(t, err)
		require.Len(t, workspaces, 1)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials return a workspace-bound session", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		user, registered := registerUser(t, st, "Alice", "alice@example.com")

		got, session, err := svc.Authenticate(ctx, "ALICE@example.com", "password-1")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Equal(t, registered.WorkspaceID, session.WorkspaceID)
		require.Equal(t, domain.RoleAdmin, session.Role)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		registerUser(t, st, "Alice", "alice@example.com")

		_, _, err := svc.Authenticate(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = svc.Authenticate(ctx, "ghost@example.com", "password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login consumes a pending invite", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}
		wsSvc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")
		bob, _ := registerUser(t, st, "Bob", "bob@example.com")

		_, err := wsSvc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
		require.NoError(t, err)

		_, _, err = svc.Authenticate(ctx, "bob@example.com", "password-1")
		require.NoError(t, err)

		membership, err := st.Memberships().GetMembership(ctx, bob.ID, admin.WorkspaceID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, membership.Role)
	})

	t.Run("malformed stored hash fails closed", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		user, _ := registerUser(t, st, "Alice", "alice@example.com")
		require.NoError(t, st.Users().UpdatePasswordHash(ctx, user.ID, "not-a-credential"))

		_, _, err := svc.Authenticate(ctx, "alice@example.com", "password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("token resets the password exactly once", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		registerUser(t, st, "Alice", "alice@example.com")

		token, err := svc.RequestPasswordReset(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, svc.ConsumePasswordReset(ctx, token, "new-password"))

		_, _, err = svc.Authenticate(ctx, "alice@example.com", "password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = svc.Authenticate(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)

		// Second use is rejected and leaves the password alone.
		err = svc.ConsumePasswordReset(ctx, token, "sneaky")
		require.ErrorIs(t, err, ErrTokenAlreadyUsed)
		_, _, err = svc.Authenticate(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)
	})

	t.Run("unknown email reports success without a token", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		token, err := svc.RequestPasswordReset(ctx, "ghost@example.com")
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		err := svc.ConsumePasswordReset(ctx, "no-such-token", "new-password")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		user, _ := registerUser(t, st, "Alice", "alice@example.com")

		stale, err := cryptox.GenerateToken(cryptox.TokenSizeReset)
		require.NoError(t, err)
		require.NoError(t, st.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
			ID:        idx.New(),
			UserID:    user.ID,
			Token:     stale,
			CreatedAt: time.Now().UTC().Add(-2 * domain.PasswordResetTTL),
		}))

		err = svc.ConsumePasswordReset(ctx, stale, "new-password")
		require.ErrorIs(t, err, ErrTokenExpired)

		// The old password still works.
		_, _, err = svc.Authenticate(ctx, "alice@example.com", "password-1")
		require.NoError(t, err)
	})

	t.Run("empty replacement password is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &AuthService{Store: st}

		registerUser(t, st, "Alice", "alice@example.com")
		token, err := svc.RequestPasswordReset(ctx, "alice@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, svc.ConsumePasswordReset(ctx, token, ""), ErrValidation)
	})
}

func TestRegisterRollsBackOnInviteStoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A user registering twice concurrently is the usual way to hit this,
	// simulated here by pre-inserting the email inside the window.
	st := newTestStore(t)
	svc := &AuthService{Store: st}

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{
		ID:           idx.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "pbkdf2$sha256$120000$x$y",
		CreatedAt:    time.Now().UTC(),
	}))

	_, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter22")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}
