package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

func TestCreateWorkspace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator becomes admin of the new workspace", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, session := registerUser(t, st, "Alice", "alice@example.com")

		workspace, err := svc.CreateWorkspace(ctx, session, "Side Project")
		require.NoError(t, err)
		require.Equal(t, session.UserID, workspace.OwnerUserID)

		membership, err := st.Memberships().GetMembership(ctx, session.UserID, workspace.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, membership.Role)
	})

	t.Run("members cannot create workspaces", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, session := registerUser(t, st, "Alice", "alice@example.com")
		session.Role = domain.RoleMember

		_, err := svc.CreateWorkspace(ctx, session, "Denied")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("rejects blank names", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, session := registerUser(t, st, "Alice", "alice@example.com")

		_, err := svc.CreateWorkspace(ctx, session, "   ")
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestSwitchWorkspace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("switch picks up the role held there", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}
		authSvc := &AuthService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")
		_, err := svc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
		require.NoError(t, err)

		_, bobSession, err := authSvc.Register(ctx, "Bob", "bob@example.com", "password-1")
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, bobSession.Role)

		// Bob builds a workspace of his own, then hops between the two.
		own, err := svc.CreateWorkspace(ctx, domain.Session{
			UserID: bobSession.UserID,
			Email:  bobSession.Email,
			Role:   domain.RoleAdmin,
		}, "Bob's Lab")
		require.NoError(t, err)

		switched, err := svc.SwitchWorkspace(ctx, bobSession, own.ID)
		require.NoError(t, err)
		require.Equal(t, own.ID, switched.WorkspaceID)
		require.Equal(t, domain.RoleAdmin, switched.Role)

		back, err := svc.SwitchWorkspace(ctx, switched, admin.WorkspaceID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, back.Role)
	})

	t.Run("non-members are rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, alice := registerUser(t, st, "Alice", "alice@example.com")
		_, mallory := registerUser(t, st, "Mallory", "mallory@example.com")

		_, err := svc.SwitchWorkspace(ctx, mallory, alice.WorkspaceID)
		require.ErrorIs(t, err, ErrNotAMember)
	})
}

func TestMintInvite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("admin mints a previewable invite", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")

		token, err := svc.MintInvite(ctx, admin, "New.Hire@Example.com", domain.RoleMember)
		require.NoError(t, err)

		invite, err := svc.InviteByToken(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "new.hire@example.com", invite.Email)
		require.Equal(t, admin.WorkspaceID, invite.WorkspaceID)
		require.Equal(t, domain.RoleMember, invite.Role)
	})

	t.Run("members cannot mint", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, session := registerUser(t, st, "Alice", "alice@example.com")
		session.Role = domain.RoleMember

		_, err := svc.MintInvite(ctx, session, "bob@example.com", domain.RoleMember)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("rejects bad email and role", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")

		_, err := svc.MintInvite(ctx, admin, "not-an-email", domain.RoleMember)
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.MintInvite(ctx, admin, "bob@example.com", domain.Role("owner"))
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestAcceptPendingInvite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nothing pending returns nil membership", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		user, _ := registerUser(t, st, "Alice", "alice@example.com")

		membership, err := svc.AcceptPendingInvite(ctx, user.ID, "alice@example.com")
		require.NoError(t, err)
		require.Nil(t, membership)
	})

	t.Run("newest pending invite wins", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")
		second, err := svc.CreateWorkspace(ctx, admin, "Second")
		require.NoError(t, err)

		_, err = svc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
		require.NoError(t, err)

		laterSession := admin
		laterSession.WorkspaceID = second.ID
		_, err = svc.MintInvite(ctx, laterSession, "bob@example.com", domain.RoleAdmin)
		require.NoError(t, err)

		// Created directly so registration doesn't consume anything first.
		bobID := idx.New()
		require.NoError(t, st.Users().CreateUser(ctx, domain.User{
			ID:           bobID,
			Name:         "Bob",
			Email:        "bob@example.com",
			PasswordHash: "pbkdf2$sha256$120000$x$y",
			CreatedAt:    time.Now().UTC(),
		}))

		membership, err := svc.AcceptPendingInvite(ctx, bobID, "bob@example.com")
		require.NoError(t, err)
		require.NotNil(t, membership)
		require.Equal(t, second.ID, membership.WorkspaceID)
		require.Equal(t, domain.RoleAdmin, membership.Role)
	})

	t.Run("existing membership is returned, invite still consumed", func(t *testing.T) {
		st := newTestStore(t)
		svc := &WorkspaceService{Store: st}

		_, admin := registerUser(t, st, "Admin", "admin@example.com")
		_, err := svc.MintInvite(ctx, admin, "bob@example.com", domain.RoleAdmin)
		require.NoError(t, err)

		// Bob registers, consuming the first invite as a member... admin
		// re-invites with a different role afterwards.
		bob, _ := registerUser(t, st, "Bob", "bob@example.com")
		token, err := svc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
		require.NoError(t, err)

		membership, err := svc.AcceptPendingInvite(ctx, bob.ID, "bob@example.com")
		require.NoError(t, err)
		require.NotNil(t, membership)
		// The original role survives; invites never demote.
		require.Equal(t, domain.RoleAdmin, membership.Role)

		_, err = svc.InviteByToken(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestListMembers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &WorkspaceService{Store: st}
	authSvc := &AuthService{Store: st}

	_, admin := registerUser(t, st, "Admin", "zadmin@example.com")

	_, err := svc.MintInvite(ctx, admin, "bob@example.com", domain.RoleMember)
	require.NoError(t, err)
	_, _, err = authSvc.Register(ctx, "Bob", "bob@example.com", "password-1")
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, members, 2)
	// Ordered by email.
	require.Equal(t, "bob@example.com", members[0].Email)
	require.Equal(t, "zadmin@example.com", members[1].Email)

	memberSession := admin
	memberSession.Role = domain.RoleMember
	_, err = svc.ListMembers(ctx, memberSession)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDefaultWorkspaceFor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &WorkspaceService{Store: st}

	user, session := registerUser(t, st, "Alice", "alice@example.com")

	ws, err := svc.DefaultWorkspaceFor(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, session.WorkspaceID, ws.WorkspaceID)

	_, err = svc.DefaultWorkspaceFor(ctx, idx.New())
	require.ErrorIs(t, err, ErrNotAMember)
}
