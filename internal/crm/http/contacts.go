package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
)

type ContactsHandler struct {
	RecordService *service.RecordService
}

type contactDTO struct {
	ID        string    `json:"id,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Title     string    `json:"title,omitempty"`
	CompanyID string    `json:"company_id,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func contactFromDomain(c domain.Contact) contactDTO {
	return contactDTO{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Title:     c.Title,
		CompanyID: c.CompanyID.String(),
		Owner:     c.Owner,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *ContactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	contacts, err := h.RecordService.ListContacts(r.Context(), session, searchQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]contactDTO, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactFromDomain(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ContactsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	contact, err := h.RecordService.GetContact(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contactFromDomain(contact))
}

func (h *ContactsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, domain.Contact{}, http.StatusCreated)
}

func (h *ContactsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.save(w, r, domain.Contact{ID: id}, http.StatusOK)
}

func (h *ContactsHandler) save(w http.ResponseWriter, r *http.Request, contact domain.Contact, status int) {
	session, _ := SessionFromContext(r.Context())

	var req contactDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	companyID, err := parseOptionalID(req.CompanyID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "company_id is not a valid id")
		return
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Title = req.Title
	contact.CompanyID = companyID
	contact.Owner = req.Owner

	saved, err := h.RecordService.SaveContact(r.Context(), session, contact)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, contactFromDomain(saved))
}

func (h *ContactsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteContact(r.Context(), session, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
