package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/deals"
	"github.com/rukioi/legalflow/internal/models"
)

type DealHandler struct {
	svc   *deals.Service
	hooks *Hooks
}

func NewDealHandler(svc *deals.Service, hooks *Hooks) *DealHandler {
	return &DealHandler{svc: svc, hooks: hooks}
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Deal{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deals": list, "pagination": page})
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deal not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deals.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "deal.create", "deal", d.ID, map[string]interface{}{"title": d.Title})
	writeJSON(w, http.StatusCreated, d)
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	d, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deal not found"})
		return
	}
	h.hooks.Record(r, "deal.update", "deal", d.ID, map[string]interface{}{"fields": patchKeys(patch)})
	if _, ok := patch["stage"]; ok {
		switch d.Stage {
		case "won":
			h.hooks.Emit(r, "deal.won", d)
		case "lost":
			h.hooks.Emit(r, "deal.lost", d)
		}
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deal not found"})
		return
	}
	h.hooks.Record(r, "deal.delete", "deal", id, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DealHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
