package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/cryptox"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

var (
	// ErrNotAMember means the user holds no membership in the workspace
	// they tried to act in.
	ErrNotAMember = errors.New("not a member of this workspace")

	// ErrPermissionDenied means the user's role does not allow the
	// operation.
	ErrPermissionDenied = errors.New("permission denied")
)

// WorkspaceService owns workspaces, memberships, and invites.
type WorkspaceService struct {
	Store store.Store
}

// RequireRole checks the session's role against the minimum the operation
// needs. Admins pass every check.
func RequireRole(session domain.Session, role domain.Role) error {
	if session.Role == domain.RoleAdmin || session.Role == role {
		return nil
	}
	return ErrPermissionDenied
}

// CreateWorkspace provisions a new workspace with the caller as its admin.
// Only admins create additional workspaces; registration builds the default
// one itself. Workspace and membership commit together.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, session domain.Session, name string) (domain.Workspace, error) {
	log := slogx.FromContext(ctx)

	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return domain.Workspace{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Workspace{}, fmt.Errorf("%w: name", ErrValidation)
	}

	now := time.Now().UTC()
	workspace := domain.Workspace{
		ID:          idx.New(),
		Name:        name,
		OwnerUserID: session.UserID,
		CreatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().CreateWorkspace(ctx, workspace); err != nil {
			return err
		}
		return tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:          idx.New(),
			UserID:      session.UserID,
			WorkspaceID: workspace.ID,
			Role:        domain.RoleAdmin,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.Workspace{}, err
	}

	log.Info("workspace created",
		slog.String("workspace_id", workspace.ID.String()),
		slog.String("owner_user_id", session.UserID.String()),
	)

	return workspace, nil
}

// DefaultWorkspaceFor returns the earliest-created workspace the user belongs
// to. Users always have one after registration; an empty result means the
// account predates workspaces and needs an invite.
func (s *WorkspaceService) DefaultWorkspaceFor(ctx context.Context, userID idx.ID) (domain.UserWorkspace, error) {
	workspaces, err := s.Store.Memberships().ListUserWorkspaces(ctx, userID)
	if err != nil {
		return domain.UserWorkspace{}, err
	}
	if len(workspaces) == 0 {
		return domain.UserWorkspace{}, ErrNotAMember
	}
	return workspaces[0], nil
}

// ListUserWorkspaces returns every workspace the user can switch into,
// oldest first.
func (s *WorkspaceService) ListUserWorkspaces(ctx context.Context, userID idx.ID) ([]domain.UserWorkspace, error) {
	return s.Store.Memberships().ListUserWorkspaces(ctx, userID)
}

// SwitchWorkspace rebinds the session to another workspace the user is a
// member of, picking up the role they hold there.
func (s *WorkspaceService) SwitchWorkspace(ctx context.Context, session domain.Session, workspaceID idx.ID) (domain.Session, error) {
	membership, err := s.Store.Memberships().GetMembership(ctx, session.UserID, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrNotAMember
		}
		return domain.Session{}, err
	}

	session.WorkspaceID = membership.WorkspaceID
	session.Role = membership.Role
	return session, nil
}

// MintInvite creates a pending invite into the caller's active workspace and
// returns the opaque token to deliver out of band. Admin only.
func (s *WorkspaceService) MintInvite(ctx context.Context, session domain.Session, email string, role domain.Role) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Gate and validate.
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return "", err
	}
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: email", ErrValidation)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: role", ErrValidation)
	}

	// 2. Mint the token and persist the invite.
	token, err := cryptox.GenerateToken(cryptox.TokenSizeInvite)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return "", err
	}

	if err := s.Store.Invites().CreateInvite(ctx, domain.Invite{
		ID:          idx.New(),
		Email:       email,
		WorkspaceID: session.WorkspaceID,
		Role:        role,
		Token:       token,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	log.Info("invite minted",
		slog.String("workspace_id", session.WorkspaceID.String()),
		slog.String("role", string(role)),
	)

	return token, nil
}

// InviteByToken resolves an invite token for preview before the invitee
// registers. Consumed invites look the same as unknown ones.
func (s *WorkspaceService) InviteByToken(ctx context.Context, token string) (domain.Invite, error) {
	invite, err := s.Store.Invites().GetInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInvalidToken
		}
		return domain.Invite{}, err
	}
	if invite.Consumed() {
		return domain.Invite{}, ErrInvalidToken
	}
	return invite, nil
}

// AcceptPendingInvite consumes the newest pending invite for the email, if
// one exists, and returns the membership it granted. Returns (nil, nil) when
// there is nothing to accept.
func (s *WorkspaceService) AcceptPendingInvite(ctx context.Context, userID idx.ID, email string) (*domain.Membership, error) {
	var membership *domain.Membership
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := acceptPendingInvite(ctx, tx, userID, NormalizeEmail(email))
		membership = m
		return err
	})
	return membership, err
}

// ListMembers returns the members of the caller's active workspace. Admin
// only; the member list leaks every email in the workspace.
func (s *WorkspaceService) ListMembers(ctx context.Context, session domain.Session) ([]domain.Member, error) {
	if err := RequireRole(session, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListWorkspaceMembers(ctx, session.WorkspaceID)
}

// acceptPendingInvite consumes the newest pending invite for the email inside
// the caller's transaction. Invites are single-use: the consume is a
// conditional update, so two concurrent logins cannot both claim one. If the
// user already belongs to the invited workspace the invite is still consumed
// and the existing membership returned.
func acceptPendingInvite(ctx context.Context, st store.Store, userID idx.ID, email string) (*domain.Membership, error) {
	invite, err := st.Invites().GetLatestPendingInviteByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := st.Invites().MarkInviteAccepted(ctx, invite.ID); err != nil {
		// Zero rows means someone else consumed it between the read and
		// the update.
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	existing, err := st.Memberships().GetMembership(ctx, userID, invite.WorkspaceID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	membership := domain.Membership{
		ID:          idx.New(),
		UserID:      userID,
		WorkspaceID: invite.WorkspaceID,
		Role:        invite.Role,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.Memberships().CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return &membership, nil
}
