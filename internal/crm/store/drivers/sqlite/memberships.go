package sqlite

import (
	"context"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type membershipsRepo struct {
	q dbtx
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO memberships (id, user_id, workspace_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID.String(), m.UserID.String(), m.WorkspaceID.String(), string(m.Role), m.CreatedAt)
	return mapConstraint(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, userID, workspaceID idx.ID) (domain.Membership, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, workspace_id, role, created_at
		FROM memberships WHERE user_id = ? AND workspace_id = ?`,
		userID.String(), workspaceID.String())

	var m domain.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Role, &m.CreatedAt); err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) ListUserWorkspaces(ctx context.Context, userID idx.ID) ([]domain.UserWorkspace, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.workspace_id, w.name, m.role, w.created_at
		FROM memberships m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.user_id = ?
		ORDER BY w.created_at ASC`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserWorkspace
	for rows.Next() {
		var uw domain.UserWorkspace
		if err := rows.Scan(&uw.WorkspaceID, &uw.Name, &uw.Role, &uw.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, uw)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) ListWorkspaceMembers(ctx context.Context, workspaceID idx.ID) ([]domain.Member, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT u.email, u.name, m.role, m.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ?
		ORDER BY u.email ASC`, workspaceID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.Email, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
