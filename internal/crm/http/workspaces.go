package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/idx"
)

type WorkspaceHandler struct {
	WorkspaceService *service.WorkspaceService
	RecordService    *service.RecordService
	Signer           *SessionSigner
}

type workspaceDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleList returns every workspace the caller can switch into.
func (h *WorkspaceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	workspaces, err := h.WorkspaceService.ListUserWorkspaces(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]workspaceDTO, 0, len(workspaces))
	for _, ws := range workspaces {
		out = append(out, workspaceDTO{
			ID:        ws.WorkspaceID.String(),
			Name:      ws.Name,
			Role:      string(ws.Role),
			CreatedAt: ws.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

// HandleCreate provisions a new workspace with the caller as admin and
// returns a session token bound to it.
func (h *WorkspaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	var req createWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	workspace, err := h.WorkspaceService.CreateWorkspace(r.Context(), session, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	session.WorkspaceID = workspace.ID
	session.Role = domain.RoleAdmin
	token, err := h.Signer.Mint(session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"workspace": workspaceDTO{
			ID:        workspace.ID.String(),
			Name:      workspace.Name,
			Role:      string(domain.RoleAdmin),
			CreatedAt: workspace.CreatedAt,
		},
		"token": token,
	})
}

type switchWorkspaceRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// HandleSwitch rebinds the session to another workspace and mints a fresh
// token carrying the role held there.
func (h *WorkspaceHandler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	var req switchWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	workspaceID, err := idx.Parse(req.WorkspaceID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "workspace_id is not a valid id")
		return
	}

	switched, err := h.WorkspaceService.SwitchWorkspace(r.Context(), session, workspaceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := h.Signer.Mint(switched)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:       token,
		UserID:      switched.UserID.String(),
		Email:       switched.Email,
		WorkspaceID: switched.WorkspaceID.String(),
		Role:        string(switched.Role),
	})
}

type mintInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleMintInvite creates an invite into the active workspace. Admin only;
// the raw token comes back for out-of-band delivery.
func (h *WorkspaceHandler) HandleMintInvite(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	var req mintInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleMember
	}

	token, err := h.WorkspaceService.MintInvite(r.Context(), session, req.Email, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"invite_token": token,
		"email":        service.NormalizeEmail(req.Email),
		"role":         string(role),
	})
}

type memberDTO struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// HandleListMembers returns the active workspace's member roster. Admin only.
func (h *WorkspaceHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	members, err := h.WorkspaceService.ListMembers(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{
			Email:    m.Email,
			Name:     m.Name,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleReset wipes all records in the active workspace. Admin only.
func (h *WorkspaceHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	if err := h.RecordService.ResetWorkspaceData(r.Context(), session); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// HandleSeed loads the demo data set into the active workspace. Admin only.
func (h *WorkspaceHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	if err := h.RecordService.SeedSampleData(r.Context(), session); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

type InviteHandler struct {
	WorkspaceService *service.WorkspaceService
}

// HandlePreview resolves an invite token so a signup page can show what the
// invitee is joining. No authentication; the token itself is the capability.
func (h *InviteHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	invite, err := h.WorkspaceService.InviteByToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"email":        invite.Email,
		"workspace_id": invite.WorkspaceID.String(),
		"role":         string(invite.Role),
	})
}
