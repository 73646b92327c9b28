package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/cryptox"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &HousekeepingService{Store: st}
	wsSvc := &WorkspaceService{Store: st}
	authSvc := &AuthService{Store: st}

	user, admin := registerUser(t, st, "Alice", "alice@example.com")

	// An old reset token, long past its retention window.
	staleToken, err := cryptox.GenerateToken(cryptox.TokenSizeReset)
	require.NoError(t, err)
	require.NoError(t, st.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
		ID:        idx.New(),
		UserID:    user.ID,
		Token:     staleToken,
		CreatedAt: time.Now().UTC().Add(-2 * resetRetention),
	}))

	// A fresh reset token that must survive the sweep.
	freshToken, err := authSvc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)

	// A pending invite is never swept, however old the sweep cutoff.
	pendingToken, err := wsSvc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
	require.NoError(t, err)

	svc.sweep(ctx)

	_, err = st.PasswordResets().GetPasswordResetByToken(ctx, staleToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.PasswordResets().GetPasswordResetByToken(ctx, freshToken)
	require.NoError(t, err)

	_, err = st.Invites().GetInviteByToken(ctx, pendingToken)
	require.NoError(t, err)
}

func TestDeleteConsumedInvitesBefore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	wsSvc := &WorkspaceService{Store: st}

	_, admin := registerUser(t, st, "Alice", "alice@example.com")

	consumedToken, err := wsSvc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
	require.NoError(t, err)
	pendingToken, err := wsSvc.MintInvite(ctx, admin, "carol@example.com", domain.RoleMember)
	require.NoError(t, err)

	consumed, err := st.Invites().GetInviteByToken(ctx, consumedToken)
	require.NoError(t, err)
	require.NoError(t, st.Invites().MarkInviteAccepted(ctx, consumed.ID))

	// Cutoff after the acceptance time removes consumed invites only.
	require.NoError(t, st.Invites().DeleteConsumedInvitesBefore(ctx, time.Now().UTC().Add(time.Minute)))

	_, err = st.Invites().GetInviteByToken(ctx, consumedToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Invites().GetInviteByToken(ctx, pendingToken)
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &HousekeepingService{Store: st, Interval: time.Hour}

	svc.Start(context.Background())
	svc.Stop()

	// Stop on a never-started service is a no-op.
	idle := &HousekeepingService{Store: st}
	idle.Stop()
}
