package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
)

type DealsHandler struct {
	RecordService *service.RecordService
}

type dealDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	CompanyID string    `json:"company_id,omitempty"`
	ContactID string    `json:"contact_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	CloseDate string    `json:"close_date,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func dealFromDomain(d domain.Deal) dealDTO {
	return dealDTO{
		ID:        d.ID.String(),
		Name:      d.Name,
		CompanyID: d.CompanyID.String(),
		ContactID: d.ContactID.String(),
		Stage:     d.Stage,
		Amount:    d.Amount,
		CloseDate: d.CloseDate,
		Owner:     d.Owner,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (h *DealsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	deals, err := h.RecordService.ListDeals(r.Context(), session, searchQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]dealDTO, 0, len(deals))
	for _, d := range deals {
		out = append(out, dealFromDomain(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *DealsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deal, err := h.RecordService.GetDeal(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dealFromDomain(deal))
}

func (h *DealsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, domain.Deal{}, http.StatusCreated)
}

func (h *DealsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.save(w, r, domain.Deal{ID: id}, http.StatusOK)
}

func (h *DealsHandler) save(w http.ResponseWriter, r *http.Request, deal domain.Deal, status int) {
	session, _ := SessionFromContext(r.Context())

	var req dealDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	companyID, err := parseOptionalID(req.CompanyID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "company_id is not a valid id")
		return
	}
	contactID, err := parseOptionalID(req.ContactID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "contact_id is not a valid id")
		return
	}

	deal.Name = req.Name
	deal.CompanyID = companyID
	deal.ContactID = contactID
	deal.Stage = req.Stage
	deal.Amount = req.Amount
	deal.CloseDate = req.CloseDate
	deal.Owner = req.Owner

	saved, err := h.RecordService.SaveDeal(r.Context(), session, deal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, dealFromDomain(saved))
}

func (h *DealsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteDeal(r.Context(), session, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
