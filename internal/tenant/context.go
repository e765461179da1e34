package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/rukioi/legalflow/internal/models"
)

type contextKey string

const (
	tenantKey contextKey = "tenant"
	userKey   contextKey = "user"
	dbKey     contextKey = "tenant_db"
)

func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

func FromContext(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantKey).(*models.Tenant)
	return t
}

func IDFromContext(ctx context.Context) uuid.UUID {
	if t := FromContext(ctx); t != nil {
		return t.ID
	}
	return uuid.Nil
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithDB attaches the request's schema-bound handle. The handle is created by
// the access middleware once per request and must not be reused afterwards.
func WithDB(ctx context.Context, db *DB) context.Context {
	return context.WithValue(ctx, dbKey, db)
}

func DBFromContext(ctx context.Context) *DB {
	db, _ := ctx.Value(dbKey).(*DB)
	return db
}

// RequireDB returns the bound handle or ErrNoTenant when a handler ran
// without the access middleware in front of it.
func RequireDB(ctx context.Context) (*DB, error) {
	if db := DBFromContext(ctx); db != nil {
		return db, nil
	}
	return nil, ErrNoTenant
}
