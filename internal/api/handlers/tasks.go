package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tasks"
)

type TaskHandler struct {
	svc   *tasks.Service
	hooks *Hooks
}

func NewTaskHandler(svc *tasks.Service, hooks *Hooks) *TaskHandler {
	return &TaskHandler{svc: svc, hooks: hooks}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": list, "pagination": page})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tasks.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "task.create", "task", t.ID, map[string]interface{}{"title": t.Title})
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	t, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	h.hooks.Record(r, "task.update", "task", t.ID, map[string]interface{}{"fields": patchKeys(patch)})
	if _, ok := patch["status"]; ok && t.Status == "completed" {
		h.hooks.Emit(r, "task.completed", t)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	h.hooks.Record(r, "task.delete", "task", id, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
