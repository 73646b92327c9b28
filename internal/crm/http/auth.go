package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Signer      *SessionSigner
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	Role        string `json:"role,omitempty"`
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, user domain.User, session domain.Session) {
	token, err := h.Signer.Mint(session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:       token,
		UserID:      session.UserID.String(),
		Email:       session.Email,
		Name:        user.Name,
		WorkspaceID: session.WorkspaceID.String(),
		Role:        string(session.Role),
	})
}

// HandleRegister creates an account. Pending invites for the email are
// honoured; otherwise the user gets a fresh workspace.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, session, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, user, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, session, err := h.AuthService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, user, session)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a reset token. The response is identical
// whether or not the email exists; without an outbound mailer the token is
// logged for the operator to relay.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := h.AuthService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if token != "" {
		slogx.FromContext(r.Context()).Info("password reset link ready for delivery")
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.AuthService.ConsumePasswordReset(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "password_updated",
	})
}
