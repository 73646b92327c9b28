package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

// writeServiceError translates service-layer sentinels into the JSON error
// envelope. Anything unrecognized is a 500 with the detail kept server-side.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusConflict, "duplicate_email", "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusNotFound, "invalid_token", "token not recognized")
	case errors.Is(err, service.ErrTokenAlreadyUsed):
		httpx.WriteError(w, http.StatusConflict, "token_used", "token already used")
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusGone, "token_expired", "token expired")
	case errors.Is(err, service.ErrNotAMember):
		httpx.WriteError(w, http.StatusForbidden, "not_a_member", "not a member of this workspace")
	case errors.Is(err, service.ErrPermissionDenied):
		httpx.WriteError(w, http.StatusForbidden, "permission_denied", "insufficient role")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "record not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
