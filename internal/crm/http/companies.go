package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
)

type CompaniesHandler struct {
	RecordService *service.RecordService
}

type companyDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func companyFromDomain(c domain.Company) companyDTO {
	return companyDTO{
		ID:        c.ID.String(),
		Name:      c.Name,
		Domain:    c.Domain,
		Phone:     c.Phone,
		Website:   c.Website,
		Owner:     c.Owner,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CompaniesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	companies, err := h.RecordService.ListCompanies(r.Context(), session, searchQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]companyDTO, 0, len(companies))
	for _, c := range companies {
		out = append(out, companyFromDomain(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *CompaniesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	company, err := h.RecordService.GetCompany(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, companyFromDomain(company))
}

func (h *CompaniesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, domain.Company{}, http.StatusCreated)
}

func (h *CompaniesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.save(w, r, domain.Company{ID: id}, http.StatusOK)
}

func (h *CompaniesHandler) save(w http.ResponseWriter, r *http.Request, company domain.Company, status int) {
	session, _ := SessionFromContext(r.Context())

	var req companyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	company.Name = req.Name
	company.Domain = req.Domain
	company.Phone = req.Phone
	company.Website = req.Website
	company.Owner = req.Owner

	saved, err := h.RecordService.SaveCompany(r.Context(), session, company)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, companyFromDomain(saved))
}

func (h *CompaniesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteCompany(r.Context(), session, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
