package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
)

type NotesHandler struct {
	RecordService *service.RecordService
}

type noteDTO struct {
	ID          string    `json:"id,omitempty"`
	Body        string    `json:"body"`
	RelatedType string    `json:"related_type,omitempty"`
	RelatedID   string    `json:"related_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

func noteFromDomain(n domain.Note) noteDTO {
	return noteDTO{
		ID:          n.ID.String(),
		Body:        n.Body,
		RelatedType: string(n.Related.Kind),
		RelatedID:   n.Related.ID.String(),
		Owner:       n.Owner,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	notes, err := h.RecordService.ListNotes(r.Context(), session, searchQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]noteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteFromDomain(n))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	note, err := h.RecordService.GetNote(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, noteFromDomain(note))
}

func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, domain.Note{}, http.StatusCreated)
}

func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.save(w, r, domain.Note{ID: id}, http.StatusOK)
}

func (h *NotesHandler) save(w http.ResponseWriter, r *http.Request, note domain.Note, status int) {
	session, _ := SessionFromContext(r.Context())

	var req noteDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	relatedID, err := parseOptionalID(req.RelatedID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "related_id is not a valid id")
		return
	}

	note.Body = req.Body
	note.Related = domain.RelatedRef{Kind: domain.RelatedKind(req.RelatedType), ID: relatedID}
	note.Owner = req.Owner

	saved, err := h.RecordService.SaveNote(r.Context(), session, note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, noteFromDomain(saved))
}

func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteNote(r.Context(), session, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
