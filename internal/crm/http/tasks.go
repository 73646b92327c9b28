package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/domain"
	"github.com/aussiebroadwan/litecrm/internal/crm/service"
	"github.com/aussiebroadwan/litecrm/pkg/httpx"
)

type TasksHandler struct {
	RecordService *service.RecordService
}

type taskDTO struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     string    `json:"due_date,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	RelatedType string    `json:"related_type,omitempty"`
	RelatedID   string    `json:"related_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

func taskFromDomain(t domain.Task) taskDTO {
	return taskDTO{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		RelatedType: string(t.Related.Kind),
		RelatedID:   t.Related.ID.String(),
		Owner:       t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	tasks, err := h.RecordService.ListTasks(r.Context(), session, searchQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskFromDomain(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.RecordService.GetTask(r.Context(), session, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, taskFromDomain(task))
}

func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, domain.Task{}, http.StatusCreated)
}

func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.save(w, r, domain.Task{ID: id}, http.StatusOK)
}

func (h *TasksHandler) save(w http.ResponseWriter, r *http.Request, task domain.Task, status int) {
	session, _ := SessionFromContext(r.Context())

	var req taskDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	relatedID, err := parseOptionalID(req.RelatedID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "related_id is not a valid id")
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	task.Status = req.Status
	task.Priority = req.Priority
	task.Related = domain.RelatedRef{Kind: domain.RelatedKind(req.RelatedType), ID: relatedID}
	task.Owner = req.Owner

	saved, err := h.RecordService.SaveTask(r.Context(), session, task)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, taskFromDomain(saved))
}

func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteTask(r.Context(), session, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
