package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type invitesRepo struct {
	q dbtx
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invites (id, email, workspace_id, role, token, created_at, accepted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), inv.Email, inv.WorkspaceID.String(), string(inv.Role),
		inv.Token, inv.CreatedAt, mapOptionalTime(inv.AcceptedAt))
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByToken(ctx context.Context, token string) (domain.Invite, error) {
	return r.scanInvite(r.q.QueryRowContext(ctx, `
		SELECT id, email, workspace_id, role, token, created_at, accepted_at
		FROM invites WHERE token = ?`, token))
}

func (r *invitesRepo) GetLatestPendingInviteByEmail(ctx context.Context, email string) (domain.Invite, error) {
	return r.scanInvite(r.q.QueryRowContext(ctx, `
		SELECT id, email, workspace_id, role, token, created_at, accepted_at
		FROM invites
		WHERE email = ? AND accepted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, email))
}

// MarkInviteAccepted consumes the invite. The accepted_at IS NULL guard makes
// consumption single-shot even when two logins race on the same invite.
func (r *invitesRepo) MarkInviteAccepted(ctx context.Context, inviteID idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE invites SET accepted_at = ?
		WHERE id = ? AND accepted_at IS NULL`,
		time.Now().UTC(), inviteID.String()))
}

func (r *invitesRepo) DeleteConsumedInvitesBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM invites WHERE accepted_at IS NOT NULL AND accepted_at < ?`, cutoff)
	return err
}

func (r *invitesRepo) scanInvite(row *sql.Row) (domain.Invite, error) {
	var (
		inv      domain.Invite
		accepted sql.NullTime
	)
	if err := row.Scan(&inv.ID, &inv.Email, &inv.WorkspaceID, &inv.Role,
		&inv.Token, &inv.CreatedAt, &accepted); err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	inv.AcceptedAt = mapNullTimePtr(accepted)
	return inv, nil
}
