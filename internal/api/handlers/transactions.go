package handlers

import (
	"net/http"

	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/transactions"
)

type TransactionHandler struct {
	svc   *transactions.Service
	hooks *Hooks
}

func NewTransactionHandler(svc *transactions.Service, hooks *Hooks) *TransactionHandler {
	return &TransactionHandler{svc: svc, hooks: hooks}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": list, "pagination": page})
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactions.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), req, createdByFromContext(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hooks.Record(r, "transaction.create", "transaction", t.ID, map[string]interface{}{"type": t.Type})
	if t.Status == "confirmed" {
		h.hooks.Emit(r, "transaction.confirmed", t)
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}
	h.hooks.Record(r, "transaction.update", "transaction", t.ID, map[string]interface{}{"fields": patchKeys(patch)})
	if _, ok := patch["status"]; ok && t.Status == "confirmed" {
		h.hooks.Emit(r, "transaction.confirmed", t)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}
	h.hooks.Record(r, "transaction.delete", "transaction", id, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
