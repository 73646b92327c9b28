package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/internal/crm/store/drivers/sqlite"
)

// newTestRouter wires a full router over a migrated in-memory database.
func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(testSigner(), "test", st, logger)
	router.AuthService = &service.AuthService{Store: st}
	router.WorkspaceService = &service.WorkspaceService{Store: st}
	router.RecordService = &service.RecordService{Store: st}
	router.ApplyRoutes()
	return router
}

// doJSON performs a request against the router and decodes the JSON reply.
func doJSON(t *testing.T, router *Router, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestRegisterLoginAndRecordFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register and receive a workspace-bound session token.
	var registered sessionResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	}, &registered)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, registered.Token)
	require.NotEmpty(t, registered.WorkspaceID)
	require.Equal(t, "admin", registered.Role)

	// Create a company in the workspace.
	var company companyDTO
	rec = doJSON(t, router, http.MethodPost, "/v1/companies", registered.Token, map[string]string{
		"name":   "Initech",
		"domain": "initech.example",
	}, &company)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, company.ID)

	// Read it back via list and by id.
	var companies []companyDTO
	rec = doJSON(t, router, http.MethodGet, "/v1/companies?q=init", registered.Token, nil, &companies)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, companies, 1)

	rec = doJSON(t, router, http.MethodGet, "/v1/companies/"+company.ID, registered.Token, nil, &company)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Initech", company.Name)

	// Update, then delete.
	rec = doJSON(t, router, http.MethodPut, "/v1/companies/"+company.ID, registered.Token, map[string]string{
		"name": "Initrode",
	}, &company)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Initrode", company.Name)

	req := httptest.NewRequest(http.MethodDelete, "/v1/companies/"+company.ID, nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	del := httptest.NewRecorder()
	router.ServeHTTP(del, req)
	require.Equal(t, http.StatusNoContent, del.Code)

	// Login again and confirm the session matches.
	var loggedIn sessionResponse
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, &loggedIn)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, registered.WorkspaceID, loggedIn.WorkspaceID)
}

func TestInviteFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	var admin sessionResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "hunter22",
	}, &admin)
	require.Equal(t, http.StatusOK, rec.Code)

	// Mint an invite for Bob.
	var minted map[string]string
	rec = doJSON(t, router, http.MethodPost, "/v1/workspaces/invites", admin.Token, map[string]string{
		"email": "bob@example.com",
		"role":  "member",
	}, &minted)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := minted["invite_token"]
	require.NotEmpty(t, token)

	// Public preview shows where the invite leads.
	var preview map[string]string
	rec = doJSON(t, router, http.MethodGet, "/v1/invites/"+token, "", nil, &preview)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, admin.WorkspaceID, preview["workspace_id"])

	// Bob registers and lands in the invited workspace as a member.
	var bob sessionResponse
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "hunter22",
	}, &bob)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, admin.WorkspaceID, bob.WorkspaceID)
	require.Equal(t, "member", bob.Role)

	// The consumed invite previews as gone.
	rec = doJSON(t, router, http.MethodGet, "/v1/invites/"+token, "", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Members cannot mint invites.
	rec = doJSON(t, router, http.MethodPost, "/v1/workspaces/invites", bob.Token, map[string]string{
		"email": "carol@example.com",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Admin sees both members on the roster.
	var members []memberDTO
	rec = doJSON(t, router, http.MethodGet, "/v1/workspaces/members", admin.Token, nil, &members)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, members, 2)
}

func TestWorkspaceIsolationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	var alice, mallory sessionResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	}, &alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Mallory", "email": "mallory@example.com", "password": "hunter22",
	}, &mallory)
	require.Equal(t, http.StatusOK, rec.Code)

	var company companyDTO
	rec = doJSON(t, router, http.MethodPost, "/v1/companies", alice.Token, map[string]string{
		"name": "Initech",
	}, &company)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Mallory's workspace cannot read or write Alice's record by id.
	rec = doJSON(t, router, http.MethodGet, "/v1/companies/"+company.ID, mallory.Token, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/v1/companies/"+company.ID, mallory.Token, map[string]string{
		"name": "Hijacked",
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Unauthenticated requests never reach the data.
	rec = doJSON(t, router, http.MethodGet, "/v1/companies", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/livez", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	rec = doJSON(t, router, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", health.Status)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	var registered sessionResponse
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	}, &registered)
	require.Equal(t, http.StatusOK, rec.Code)

	// Forgot always accepts, known email or not.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/forgot", "", map[string]string{
		"email": "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/forgot", "", map[string]string{
		"email": "ghost@example.com",
	}, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// A bogus reset token is rejected.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/reset", "", map[string]string{
		"token":    "bogus",
		"password": "new-password",
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitOnCredentials(t *testing.T) {
	router := newTestRouter(t)

	// StrictLimit allows a small burst; hammering login past it returns 429.
	last := http.StatusOK
	for i := 0; i < 20; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"email":    fmt.Sprintf("nobody%d@example.com", i),
			"password": "wrong",
		}, nil)
		last = rec.Code
		if last == http.StatusTooManyRequests {
			break
		}
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
