package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/clients"
	"github.com/rukioi/legalflow/internal/models"
)

type ClientHandler struct {
	svc   *clients.Service
	hooks *Hooks
}

func NewClientHandler(svc *clients.Service, hooks *Hooks) *ClientHandler {
	return &ClientHandler{svc: svc, hooks: hooks}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Client{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": list, "pagination": page})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clients.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "client.create", "client", c.ID, map[string]interface{}{"name": c.Name})
	h.hooks.Emit(r, "client.created", c)
	writeJSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	c, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
		return
	}
	h.hooks.Record(r, "client.update", "client", c.ID, map[string]interface{}{"fields": patchKeys(patch)})
	h.hooks.Emit(r, "client.updated", c)
	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
		return
	}
	h.hooks.Record(r, "client.delete", "client", id, nil)
	h.hooks.Emit(r, "client.deleted", map[string]string{"id": id.String()})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ClientHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
