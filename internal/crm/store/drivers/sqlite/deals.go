package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type dealsRepo struct {
	q dbtx
}

func (r *dealsRepo) InsertDeal(ctx context.Context, d domain.Deal) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO deals (id, name, company_id, contact_id, stage, amount, close_date, owner, user_id, workspace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.Name, mapIDNull(d.CompanyID), mapIDNull(d.ContactID),
		d.Stage, d.Amount, d.CloseDate, d.Owner, mapIDNull(d.UserID),
		d.WorkspaceID.String(), d.CreatedAt, d.UpdatedAt)
	return mapConstraint(err)
}

func (r *dealsRepo) UpdateDeal(ctx context.Context, d domain.Deal) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE deals
		SET name = ?, company_id = ?, contact_id = ?, stage = ?, amount = ?, close_date = ?, owner = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		d.Name, mapIDNull(d.CompanyID), mapIDNull(d.ContactID), d.Stage, d.Amount,
		d.CloseDate, d.Owner, d.UpdatedAt, d.ID.String(), d.WorkspaceID.String()))
}

func (r *dealsRepo) DeleteDeal(ctx context.Context, workspaceID, id idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		DELETE FROM deals WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

func (r *dealsRepo) GetDealByID(ctx context.Context, workspaceID, id idx.ID) (domain.Deal, error) {
	return scanDeal(r.q.QueryRowContext(ctx, `
		SELECT id, name, company_id, contact_id, stage, amount, close_date, owner, user_id, workspace_id, created_at, updated_at
		FROM deals WHERE id = ? AND workspace_id = ?`,
		id.String(), workspaceID.String()))
}

// ListDeals filters by workspace first; search matches the deal name.
func (r *dealsRepo) ListDeals(ctx context.Context, workspaceID idx.ID, query string, limit int) ([]domain.Deal, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, name, company_id, contact_id, stage, amount, close_date, owner, user_id, workspace_id, created_at, updated_at
			FROM deals
			WHERE workspace_id = ? AND name LIKE ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), "%"+query+"%", limit)
	} else {
		rows, err = r.q.QueryContext(ctx, `
			SELECT id, name, company_id, contact_id, stage, amount, close_date, owner, user_id, workspace_id, created_at, updated_at
			FROM deals
			WHERE workspace_id = ?
			ORDER BY updated_at DESC
			LIMIT ?`, workspaceID.String(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dealsRepo) DeleteWorkspaceDeals(ctx context.Context, workspaceID idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM deals WHERE workspace_id = ?`, workspaceID.String())
	return err
}

func scanDeal(row scanner) (domain.Deal, error) {
	var (
		d         domain.Deal
		companyID sql.NullString
		contactID sql.NullString
		userID    sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &companyID, &contactID, &d.Stage, &d.Amount,
		&d.CloseDate, &d.Owner, &userID, &d.WorkspaceID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Deal{}, mapNotFound(err)
	}
	d.CompanyID = mapNullID(companyID)
	d.ContactID = mapNullID(contactID)
	d.UserID = mapNullID(userID)
	return d, nil
}
