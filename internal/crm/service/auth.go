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
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is deliberately generic: a missing user and a
	// wrong password look identical to callers, so accounts cannot be
	// enumerated through the login form.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenAlreadyUsed = errors.New("token already used")
	ErrTokenExpired     = errors.New("token expired")

	// ErrValidation reports a missing or malformed required field. Wrapped
	// with the field name at the call site.
	ErrValidation = errors.New("validation failed")
)

// AuthService owns user records and password credentials: registration,
// login, and the password reset flow.
type AuthService struct {
	Store store.Store
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user and settles their first workspace: if a pending
// invite matches the email it is consumed and the invited membership created;
// otherwise a default workspace is created with the user as admin. The whole
// flow is one transaction, so a crash can't leave a user with no workspace or
// an invite half-consumed.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, domain.Session, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate and normalize input.
	email = NormalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.Session{}, fmt.Errorf("%w: email", ErrValidation)
	}
	if password == "" {
		return domain.User{}, domain.Session{}, fmt.Errorf("%w: password", ErrValidation)
	}

	// 2. Hash the password before opening the transaction; key stretching is
	// slow by design and has no business holding the writer.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, domain.Session{}, err
	}

	user := domain.User{
		ID:           idx.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	var session domain.Session

	// 3. Create the user, then either accept a pending invite or create the
	// default workspace, atomically.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateEmail
			}
			return err
		}

		membership, err := acceptPendingInvite(ctx, tx, user.ID, user.Email)
		if err != nil {
			return err
		}
		if membership != nil {
			session = domain.Session{
				UserID:      user.ID,
				Email:       user.Email,
				WorkspaceID: membership.WorkspaceID,
				Role:        membership.Role,
			}
			return nil
		}

		// No invite waiting: give the user a workspace of their own.
		now := time.Now().UTC()
		workspace := domain.Workspace{
			ID:          idx.New(),
			Name:        fmt.Sprintf("%s's Workspace", user.DisplayName()),
			OwnerUserID: user.ID,
			CreatedAt:   now,
		}
		if err := tx.Workspaces().CreateWorkspace(ctx, workspace); err != nil {
			return err
		}
		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:          idx.New(),
			UserID:      user.ID,
			WorkspaceID: workspace.ID,
			Role:        domain.RoleAdmin,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		session = domain.Session{
			UserID:      user.ID,
			Email:       user.Email,
			WorkspaceID: workspace.ID,
			Role:        domain.RoleAdmin,
		}
		return nil
	})
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("workspace_id", session.WorkspaceID.String()),
		slog.String("role", string(session.Role)),
	)

	return user, session, nil
}

// Authenticate verifies credentials, consumes at most one pending invite for
// the email, and returns a session bound to the user's default workspace.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.User, domain.Session, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)

	// 1. Look up the user. Missing user and bad password fail identically.
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, domain.Session{}, err
	}

	// 2. Verify. A malformed stored credential also lands here; it must fail
	// the login, never crash it.
	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		log.Warn("failed login attempt", slog.String("user_id", user.ID.String()))
		return domain.User{}, domain.Session{}, ErrInvalidCredentials
	}

	// 3. Consume a pending invite, if any, so invited users land in the
	// right workspace on first sign-in.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := acceptPendingInvite(ctx, tx, user.ID, user.Email)
		return err
	})
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}

	// 4. Bind the session to the earliest-created workspace the user
	// belongs to.
	session := domain.Session{UserID: user.ID, Email: user.Email}
	workspaces, err := s.Store.Memberships().ListUserWorkspaces(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	if len(workspaces) > 0 {
		session.WorkspaceID = workspaces[0].WorkspaceID
		session.Role = workspaces[0].Role
	}

	log.Info("user authenticated",
		slog.String("user_id", user.ID.String()),
		slog.String("workspace_id", session.WorkspaceID.String()),
	)

	return user, session, nil
}

// RequestPasswordReset issues a single-use reset token. To avoid account
// enumeration it reports success for unknown emails too; the token is only
// persisted (and returned) when the user exists, so callers must treat an
// empty token as "nothing to deliver".
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSizeReset)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return "", err
	}

	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
		ID:        idx.New(),
		UserID:    user.ID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	log.Info("password reset token issued", slog.String("user_id", user.ID.String()))
	return token, nil
}

// ConsumePasswordReset validates a reset token and, exactly once, replaces
// the user's credential. The hash update and token consumption commit
// together.
func (s *AuthService) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if newPassword == "" {
		return fmt.Errorf("%w: password", ErrValidation)
	}

	reset, err := s.Store.PasswordResets().GetPasswordResetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if reset.UsedAt != nil {
		return ErrTokenAlreadyUsed
	}
	if reset.Expired(time.Now().UTC()) {
		return ErrTokenExpired
	}

	passwordHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, passwordHash); err != nil {
			return err
		}
		if err := tx.PasswordResets().MarkPasswordResetUsed(ctx, reset.ID); err != nil {
			// Zero rows here means another request consumed it first.
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenAlreadyUsed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("password reset consumed", slog.String("user_id", reset.UserID.String()))
	return nil
}
