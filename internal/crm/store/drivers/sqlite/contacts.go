package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type contactsRepo struct {
	q dbtx
}

func (r *contactsRepo) InsertContact(ctx context.Context, c domain.Contact) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, phone, title, company_id, owner, user_id, workspace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.FirstName, c.LastName, c.Email, c.Phone, c.Title,
		mapIDNull(c.CompanyID), c.Owner, mapIDNull(c.UserID), c.WorkspaceID.String(),
		c.CreatedAt, c.UpdatedAt)
	return mapConstraint(err)
}

func (r *contactsRepo) UpdateContact(ctx context.Context, c domain.Contact) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE contacts
		SET first_name = ?, last_name = ?, email = ?, phone = ?, title = ?, company_id = ?, owner = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Title, mapIDNull(c.CompanyID),
		c.Owner, c.UpdatedAt, c.ID.String(), c.WorkspaceID.String()))
}

func (r *contactsRepo) DeleteContact(ctx context.Context, workspaceID, id idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		DELETE FROM contacts WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

func (r *contactsRepo) GetContactByID(ctx context.Context, workspaceID, id idx.ID) (domain.Contact, error) {
	return scanContact(r.q.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone, title, company_id, owner, user_id, workspace_id, created_at, updated_at
		FROM contacts WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

// ListContacts filters by workspace first; search matches names, email, or
// phone.
func (r *contactsRepo) ListContacts(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Contact, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		like := "%" + query + "%"
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, first_name, last_name, email, phone, title, company_id, owner, user_id, workspace_id, created_at, updated_at
			FROM contacts
			WHERE workspace_id = ? AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?)
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), like, like, like, like, limit)
	} else {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, first_name, last_name, email, phone, title, company_id, owner, user_id, workspace_id, created_at, updated_at
			FROM contacts
			WHERE workspace_id = ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contactsRepo) DeleteWorkspaceContacts(ctx context.Context, workspaceID idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM contacts WHERE workspace_id = ?`, workspaceID.String())
	return err
}

func scanContact(row scanner) (domain.Contact, error) {
	var (
		c         domain.Contact
		companyID sql.NullString
		userID    sql.NullString
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Title,
		&companyID, &c.Owner, &userID, &c.WorkspaceID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Contact{}, mapNotFound(err)
	}
	c.CompanyID = mapNullID(companyID)
	c.UserID = mapNullID(userID)
	return c, nil
}
