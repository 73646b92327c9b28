package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type tasksRepo struct {
	q dbtx
}

func (r *tasksRepo) InsertTask(ctx context.Context, t domain.Task) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, due_date, status, priority, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Title, t.Description, t.DueDate, t.Status, t.Priority,
		string(t.Related.Kind), t.Related.ID.String(), t.Owner,
		mapIDNull(t.UserID), t.WorkspaceID.String(), t.CreatedAt, t.UpdatedAt)
	return mapConstraint(err)
}

func (r *tasksRepo) UpdateTask(ctx context.Context, t domain.Task) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, status = ?, priority = ?, related_type = ?, related_id = ?, owner = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		t.Title, t.Description, t.DueDate, t.Status, t.Priority,
		string(t.Related.Kind), t.Related.ID.String(), t.Owner, t.UpdatedAt,
		t.ID.String(), t.WorkspaceID.String()))
}

func (r *tasksRepo) DeleteTask(ctx context.Context, workspaceID, id idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, workspaceID, id idx.ID) (domain.Task, error) {
	return scanTask(r.q.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, status, priority, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
		FROM tasks WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

// ListTasks filters by workspace first; search matches title or description.
func (r *tasksRepo) ListTasks(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		like := "%" + query + "%"
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, title, description, due_date, status, priority, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
			FROM tasks
			WHERE workspace_id = ? AND (title LIKE ? OR description LIKE ?)
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), like, like, limit)
	} else {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, title, description, due_date, status, priority, related_type, related_id, owner, user_id, workspace_id, created_at, updated_at
			FROM tasks
			WHERE workspace_id = ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tasksRepo) DeleteWorkspaceTasks(ctx context.Context, workspaceID idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE workspace_id = ?`, workspaceID.String())
	return err
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t      domain.Task
		kind   string
		userID sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority,
		&kind, &t.Related.ID, &t.Owner, &userID, &t.WorkspaceID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	t.Related.Kind = domain.RelatedKind(kind)
	t.UserID = mapNullID(userID)
	return t, nil
}
