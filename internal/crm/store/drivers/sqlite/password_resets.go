package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type passwordResetsRepo struct {
	q dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO password_resets (id, user_id, token, created_at, used_at)
		VALUES (?, ?, ?, ?, ?)`,
		pr.ID.String(), pr.UserID.String(), pr.Token, pr.CreatedAt, mapOptionalTime(pr.UsedAt))
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetPasswordResetByToken(ctx context.Context, token string) (domain.PasswordReset, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token, created_at, used_at
		FROM password_resets WHERE token = ?`, token)

	var (
		pr   domain.PasswordReset
		used sql.NullTime
	)
	if err := row.Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.CreatedAt, &used); err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.UsedAt = mapNullTimePtr(used)
	return pr, nil
}

// MarkPasswordResetUsed consumes the token; the used_at IS NULL guard keeps
// it single-use under concurrent submissions.
func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, resetID idx.ID) error {
	return requireRowsAffected(r.q.ExecContext(ctx, `
		UPDATE password_resets SET used_at = ?
		WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), resetID.String()))
}

func (r *passwordResetsRepo) DeletePasswordResetsBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM password_resets WHERE created_at < ?`, cutoff)
	return err
}
