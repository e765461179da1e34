package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tenant"
)

// APIKeyMiddleware authenticates machine integrations. A request without the
// key header passes through untouched so the JWT middleware can handle it.
type APIKeyMiddleware struct {
	db            *pgxpool.Pool
	headerName    string
	tenantService *tenant.Service
}

func NewAPIKeyMiddleware(db *pgxpool.Pool, headerName string, ts *tenant.Service) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		db:            db,
		headerName:    headerName,
		tenantService: ts,
	}
}

func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(m.headerName)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		hash := HashAPIKey(key)

		var ak models.APIKey
		var scopesJSON json.RawMessage
		err := m.db.QueryRow(r.Context(),
			`SELECT id, tenant_id, user_id, key_hash, name, scopes, expires_at, created_at
			 FROM api_keys WHERE key_hash = $1`, hash,
		).Scan(&ak.ID, &ak.TenantID, &ak.UserID, &ak.KeyHash, &ak.Name, &scopesJSON, &ak.ExpiresAt, &ak.CreatedAt)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		if err := json.Unmarshal(scopesJSON, &ak.Scopes); err != nil {
			writeError(w, http.StatusInternalServerError, "invalid scopes")
			return
		}

		if ak.ExpiresAt != nil && ak.ExpiresAt.Before(time.Now()) {
			writeError(w, http.StatusUnauthorized, "API key expired")
			return
		}

		t, err := m.tenantService.GetByID(r.Context(), ak.TenantID)
		if err != nil {
			writeError(w, http.StatusForbidden, "tenant not found")
			return
		}
		if !t.IsActive {
			writeError(w, http.StatusForbidden, "tenant deactivated")
			return
		}

		db, err := tenant.BindDB(m.db, t)
		if err != nil {
			writeError(w, http.StatusForbidden, "tenant schema unavailable")
			return
		}

		go m.touchLastUsed(ak.ID.String())

		ctx := tenant.WithTenant(r.Context(), t)
		ctx = tenant.WithDB(ctx, db)

		if ak.UserID != nil {
			if user, err := m.tenantService.GetUserByID(r.Context(), *ak.UserID); err == nil {
				ctx = tenant.WithUser(ctx, user)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// touchLastUsed runs detached from the request so a slow write never delays
// the response.
func (m *APIKeyMiddleware) touchLastUsed(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.db.Exec(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", id)
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
