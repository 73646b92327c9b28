package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type companiesRepo struct {
	q dbtx
}

func (r *companiesRepo) InsertCompany(ctx context.Context, c domain.Company) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO companies (id, name, domain, phone, website, owner, user_id, workspace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Domain, c.Phone, c.Website, c.Owner,
		mapIDNull(c.UserID), c.WorkspaceID.String(), c.CreatedAt, c.UpdatedAt)
	return mapConstraint(err)
}

func (r *companiesRepo) UpdateCompany(ctx context.Context, c domain.Company) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, domain = ?, phone = ?, website = ?, owner = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		c.Name, c.Domain, c.Phone, c.Website, c.Owner, c.UpdatedAt,
		c.ID.String(), c.WorkspaceID.String()))
}

func (r *companiesRepo) DeleteCompany(ctx context.Context, workspaceID, id idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		DELETE FROM companies WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, workspaceID, id idx.ID) (domain.Company, error) {
	return scanCompany(r.q.QueryRowContext(ctx, `
		SELECT id, name, domain, phone, website, owner, user_id, workspace_id, created_at, updated_at
		FROM companies WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

// ListCompanies filters by workspace before any search predicate; search
// matches name or domain.
func (r *companiesRepo) ListCompanies(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Company, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		like := "%" + query + "%"
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, name, domain, phone, website, owner, user_id, workspace_id, created_at, updated_at
			FROM companies
			WHERE workspace_id = ? AND (name LIKE ? OR domain LIKE ?)
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), like, like, limit)
	} else {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, name, domain, phone, website, owner, user_id, workspace_id, created_at, updated_at
			FROM companies
			WHERE workspace_id = ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *companiesRepo) DeleteWorkspaceCompanies(ctx context.Context, workspaceID idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM companies WHERE workspace_id = ?`, workspaceID.String())
	return err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (domain.Company, error) {
	var (
		c      domain.Company
		userID sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Domain, &c.Phone, &c.Website, &c.Owner,
		&userID, &c.WorkspaceID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	c.UserID = mapNullID(userID)
	return c, nil
}
