package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/invoices"
	"github.com/rukioi/legalflow/internal/models"
)

type InvoiceHandler struct {
	svc   *invoices.Service
	hooks *Hooks
}

func NewInvoiceHandler(svc *invoices.Service, hooks *Hooks) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, hooks: hooks}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Invoice{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": list, "pagination": page})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if inv == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoices.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inv, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "invoice.create", "invoice", inv.ID, map[string]interface{}{"number": inv.Number})
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	inv, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if inv == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	h.hooks.Record(r, "invoice.update", "invoice", inv.ID, map[string]interface{}{"fields": patchKeys(patch)})
	if _, ok := patch["status"]; ok {
		switch inv.Status {
		case "sent":
			h.hooks.Emit(r, "invoice.sent", inv)
		case "paid":
			h.hooks.Emit(r, "invoice.paid", inv)
		}
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	h.hooks.Record(r, "invoice.delete", "invoice", id, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
