package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/litecrm/internal/crm/store"
)

type txStore struct {
	tx *sql.Tx
	q  dbtx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer DB stays open

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Users() store.Users                   { return &usersRepo{q: t.q} }
func (t *txStore) Workspaces() store.Workspaces         { return &workspacesRepo{q: t.q} }
func (t *txStore) Memberships() store.Memberships       { return &membershipsRepo{q: t.q} }
func (t *txStore) Invites() store.Invites               { return &invitesRepo{q: t.q} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{q: t.q} }
func (t *txStore) Companies() store.Companies           { return &companiesRepo{q: t.q} }
func (t *txStore) Contacts() store.Contacts             { return &contactsRepo{q: t.q} }
func (t *txStore) Deals() store.Deals                   { return &dealsRepo{q: t.q} }
func (t *txStore) Tasks() store.Tasks                   { return &tasksRepo{q: t.q} }
func (t *txStore) Notes() store.Notes                   { return &notesRepo{q: t.q} }
