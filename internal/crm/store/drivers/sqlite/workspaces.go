package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type workspacesRepo struct {
	q dbtx
}

func (r *workspacesRepo) GetWorkspaceByID(ctx context.Context, id idx.ID) (domain.Workspace, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, owner_user_id, created_at
		FROM workspaces WHERE id = ?`, id.String())

	var (
		w     domain.Workspace
		owner sql.NullString
	)
	if err := row.Scan(&w.ID, &w.Name, &owner, &w.CreatedAt); err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}
	w.OwnerUserID = mapNullID(owner)
	return w, nil
}

func (r *workspacesRepo) CreateWorkspace(ctx context.Context, w domain.Workspace) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, owner_user_id, created_at)
		VALUES (?, ?, ?, ?)`,
		w.ID.String(), w.Name, mapIDNull(w.OwnerUserID), w.CreatedAt)
	return mapConstraint(err)
}
