package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/projects"
)

type ProjectHandler struct {
	svc   *projects.Service
	hooks *Hooks
}

func NewProjectHandler(svc *projects.Service, hooks *Hooks) *ProjectHandler {
	return &ProjectHandler{svc: svc, hooks: hooks}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": list, "pagination": page})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projects.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "project.create", "project", p.ID, map[string]interface{}{"title": p.Title})
	h.hooks.Emit(r, "project.created", p)
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	p, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	h.hooks.Record(r, "project.update", "project", p.ID, map[string]interface{}{"fields": patchKeys(patch)})
	if _, ok := patch["status"]; ok && p.Status == "completed" {
		h.hooks.Emit(r, "project.completed", p)
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	h.hooks.Record(r, "project.delete", "project", id, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
