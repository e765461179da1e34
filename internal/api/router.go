package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rukioi/legalflow/internal/api/handlers"
	"github.com/rukioi/legalflow/internal/api/middleware"
	"github.com/rukioi/legalflow/internal/audit"
	"github.com/rukioi/legalflow/internal/auth"
	"github.com/rukioi/legalflow/internal/clients"
	"github.com/rukioi/legalflow/internal/config"
	"github.com/rukioi/legalflow/internal/deals"
	"github.com/rukioi/legalflow/internal/invoices"
	"github.com/rukioi/legalflow/internal/projects"
	"github.com/rukioi/legalflow/internal/queue"
	"github.com/rukioi/legalflow/internal/tasks"
	"github.com/rukioi/legalflow/internal/tenant"
	"github.com/rukioi/legalflow/internal/transactions"
	"github.com/rukioi/legalflow/internal/webhook"
)

type Router struct {
	mux    *chi.Mux
	db     *pgxpool.Pool
	redis  *redis.Client
	cfg    *config.Config
	ts     *tenant.Service
	jwt    *auth.JWTMiddleware
	apikey *auth.APIKeyMiddleware
	rbac   *auth.RBAC
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	ts := tenant.NewService(db)
	return &Router{
		mux:    chi.NewRouter(),
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		ts:     ts,
		jwt:    auth.NewJWTMiddleware(cfg.Auth.JWTSecret, ts),
		apikey: auth.NewAPIKeyMiddleware(db, cfg.Auth.APIKeyHeader, ts),
		rbac:   auth.NewRBAC(db),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	auditSvc := audit.NewService(rt.db)
	queueClient := queue.NewClient(rt.cfg.Redis)
	webhookSvc := webhook.NewService(rt.db, queueClient)
	hooks := &handlers.Hooks{Audit: auditSvc, Webhooks: webhookSvc}

	clientSvc := clients.NewService()
	projectSvc := projects.NewService()
	taskSvc := tasks.NewService()
	dealSvc := deals.NewService()
	invoiceSvc := invoices.NewService()
	transactionSvc := transactions.NewService()

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth: try API key first, then JWT
		r.Use(rt.apikey.Authenticate)
		r.Use(rt.jwt.Authenticate)

		// Rate limit per tenant once one is bound
		rl := middleware.NewRateLimiter(100, 200)
		r.Use(rl.Limit)

		clientH := handlers.NewClientHandler(clientSvc, hooks)
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", clientH.List)
			r.Post("/", clientH.Create)
			r.Get("/stats", clientH.Stats)
			r.Get("/{id}", clientH.Get)
			r.Patch("/{id}", clientH.Update)
			r.Put("/{id}", clientH.Update)
			r.Delete("/{id}", clientH.Delete)
		})

		projectH := handlers.NewProjectHandler(projectSvc, hooks)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectH.List)
			r.Post("/", projectH.Create)
			r.Get("/stats", projectH.Stats)
			r.Get("/{id}", projectH.Get)
			r.Patch("/{id}", projectH.Update)
			r.Put("/{id}", projectH.Update)
			r.Delete("/{id}", projectH.Delete)
		})

		taskH := handlers.NewTaskHandler(taskSvc, hooks)
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/stats", taskH.Stats)
			r.Get("/{id}", taskH.Get)
			r.Patch("/{id}", taskH.Update)
			r.Put("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
		})

		dealH := handlers.NewDealHandler(dealSvc, hooks)
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", dealH.List)
			r.Post("/", dealH.Create)
			r.Get("/stats", dealH.Stats)
			r.Get("/{id}", dealH.Get)
			r.Patch("/{id}", dealH.Update)
			r.Put("/{id}", dealH.Update)
			r.Delete("/{id}", dealH.Delete)
		})

		invoiceH := handlers.NewInvoiceHandler(invoiceSvc, hooks)
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", invoiceH.List)
			r.Post("/", invoiceH.Create)
			r.Get("/stats", invoiceH.Stats)
			r.Get("/{id}", invoiceH.Get)
			r.Patch("/{id}", invoiceH.Update)
			r.Put("/{id}", invoiceH.Update)
			r.Delete("/{id}", invoiceH.Delete)
		})

		transactionH := handlers.NewTransactionHandler(transactionSvc, hooks)
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionH.List)
			r.Post("/", transactionH.Create)
			r.Get("/stats", transactionH.Stats)
			r.Get("/{id}", transactionH.Get)
			r.Patch("/{id}", transactionH.Update)
			r.Put("/{id}", transactionH.Update)
			r.Delete("/{id}", transactionH.Delete)
		})

		webhookH := handlers.NewWebhookHandler(webhookSvc)
		r.Route("/webhooks", func(r chi.Router) {
			r.Use(rt.rbac.RequirePermission(auth.PermWebhooksManage))
			r.Post("/", webhookH.Create)
			r.Get("/", webhookH.List)
			r.Delete("/{id}", webhookH.Delete)
		})

		adminH := handlers.NewAdminHandler(auditSvc, rt.ts)
		r.Route("/admin", func(r chi.Router) {
			r.With(rt.rbac.RequirePermission(auth.PermAdminRead)).Get("/audit", adminH.AuditLogs)
			r.With(rt.rbac.RequirePermission(auth.PermAdminRead)).Get("/tenants", adminH.ListTenants)
			r.With(rt.rbac.RequirePermission(auth.PermAdminWrite)).Post("/tenants", adminH.CreateTenant)
			r.With(rt.rbac.RequirePermission(auth.PermAdminWrite)).Post("/tenants/{id}/activate", adminH.ActivateTenant)
			r.With(rt.rbac.RequirePermission(auth.PermAdminWrite)).Post("/tenants/{id}/deactivate", adminH.DeactivateTenant)
		})
	})

	return r
}
