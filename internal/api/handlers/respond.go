package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rukioi/legalflow/internal/audit"
	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/tenant"
	"github.com/rukioi/legalflow/internal/webhook"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service-layer errors onto HTTP statuses. Anything
// unexpected logs the detail server-side and returns a generic body so query
// text never leaks to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *crud.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}
	if errors.Is(err, crud.ErrNoFields) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no updatable fields in payload"})
		return
	}
	if errors.Is(err, tenant.ErrNoTenant) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no tenant bound to request"})
		return
	}
	var ce *tenant.ConnectionError
	if errors.As(err, &ce) {
		slog.Error("database unavailable", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable"})
		return
	}
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func parseListFilter(r *http.Request) crud.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	var tags []string
	for _, raw := range q["tags"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	return crud.ListFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
		Tags:     tags,
		Page:     page,
		Limit:    limit,
	}
}

func createdByFromContext(r *http.Request) string {
	if u := tenant.UserFromContext(r.Context()); u != nil {
		return u.Email
	}
	return ""
}

// Hooks bundles the side channels every mutating handler shares: audit trail
// and webhook fan-out. Failures on these paths are logged, never surfaced to
// the caller.
type Hooks struct {
	Audit    *audit.Service
	Webhooks *webhook.Service
}

func (h *Hooks) Record(r *http.Request, action, resourceType string, id uuid.UUID, details map[string]interface{}) {
	if h == nil || h.Audit == nil {
		return
	}
	entry := audit.LogEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &id,
		Details:      details,
		IPAddress:    remoteIP(r),
	}
	if err := h.Audit.Log(r.Context(), entry); err != nil {
		slog.Warn("audit log failed", "action", action, "error", err)
	}
}

func (h *Hooks) Emit(r *http.Request, event string, payload interface{}) {
	if h == nil || h.Webhooks == nil {
		return
	}
	if err := h.Webhooks.Dispatch(r.Context(), event, payload); err != nil {
		slog.Warn("webhook dispatch failed", "event", event, "error", err)
	}
}

func patchKeys(patch map[string]any) []string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	return keys
}

func remoteIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		addr = addr[:i]
	}
	return strings.Trim(addr, "[]")
}
