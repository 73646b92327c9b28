package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/internal/crm/store/drivers/sqlite"
)

// newTestStore spins up a migrated in-memory database per test.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

// registerUser signs up a fresh user and returns it with its initial session.
func registerUser(t *testing.T, st store.Store, name, email string) (domain.User, domain.Session) {
	t.Helper()

	svc := &AuthService{Store: st}
	user, session, err := svc.Register(context.Background(), name, email, "password-1")
	require.NoError(t, err)
	return user, session
}
