package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type notesRepo struct {
	q dbtx
}

func (r *notesRepo) InsertNote(ctx context.Context, n domain.Note) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO notes (id, body, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.Body, string(n.Related.Kind), n.Related.ID.String(), n.Owner,
		mapIDNull(n.UserID), n.WorkspaceID.String(), n.CreatedAt, n.UpdatedAt)
	return mapConstraint(err)
}

func (r *notesRepo) UpdateNote(ctx context.Context, n domain.Note) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE notes
		SET body = ?, related_type = ?, related_id = ?, owner = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		n.Body, string(n.Related.Kind), n.Related.ID.String(), n.Owner, n.UpdatedAt,
		n.ID.String(), n.WorkspaceID.String()))
}

func (r *notesRepo) DeleteNote(ctx context.Context, workspaceID, id idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		DELETE FROM notes WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

func (r *notesRepo) GetNoteByID(ctx context.Context, workspaceID, id idx.ID) (domain.Note, error) {
	return scanNote(r.q.QueryRowContext(ctx, `
		SELECT id, body, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
		FROM notes WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

// ListNotes filters by workspace first; search matches the note body.
func (r *notesRepo) ListNotes(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Note, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, body, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
			FROM notes
			WHERE workspace_id = ? AND body LIKE ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), "%"+query+"%", limit)
	} else {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, body, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
			FROM notes
			WHERE workspace_id = ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notesRepo) DeleteWorkspaceNotes(ctx context.Context, workspaceID idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notes WHERE workspace_id = ?`, workspaceID.String())
	return err
}

func scanNote(row scanner) (domain.Note, error) {
	var (
		n      domain.Note
		kind   string
		userID sql.NullString
	)
	if err := row.Scan(&n.ID, &n.Body, &kind, &n.Related.ID, &n.Owner,
		&userID, &n.WorkspaceID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	n.Related.Kind = domain.RelatedKind(kind)
	n.UserID = mapNullID(userID)
	return n, nil
}
