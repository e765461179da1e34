package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tenant"
)

// Events a subscription may ask for. Dispatch with anything else is a
// programming error, so Create rejects unknown names up front.
var knownEvents = []string{
	"client.created",
	"client.updated",
	"client.deleted",
	"project.created",
	"project.completed",
	"task.completed",
	"deal.won",
	"deal.lost",
	"invoice.sent",
	"invoice.paid",
	"invoice.overdue",
	"transaction.confirmed",
}

// Enqueuer hands a delivery off for asynchronous execution.
type Enqueuer interface {
	EnqueueWebhookDelivery(ctx context.Context, req DeliveryRequest) error
}

type DeliveryRequest struct {
	WebhookID uuid.UUID       `json:"webhook_id"`
	URL       string          `json:"url"`
	Secret    string          `json:"secret"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
}

type Service struct {
	db       *pgxpool.Pool
	enqueuer Enqueuer
}

func NewService(db *pgxpool.Pool, enqueuer Enqueuer) *Service {
	return &Service{db: db, enqueuer: enqueuer}
}

type CreateRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func (r CreateRequest) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &crud.ValidationError{Field: "url", Reason: "must be a valid http(s) URL"}
	}
	if len(r.Events) == 0 {
		return &crud.ValidationError{Field: "events", Reason: "at least one event is required"}
	}
	for _, ev := range r.Events {
		if !slices.Contains(knownEvents, ev) {
			return &crud.ValidationError{Field: "events", Reason: fmt.Sprintf("unknown event %q", ev)}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Webhook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tenantID := tenant.IDFromContext(ctx)

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	eventsJSON, _ := json.Marshal(req.Events)

	var wh models.Webhook
	err = s.db.QueryRow(ctx,
		`INSERT INTO webhooks (tenant_id, url, events, secret, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, tenant_id, url, events, is_active, created_at`,
		tenantID, req.URL, eventsJSON, secret,
	).Scan(&wh.ID, &wh.TenantID, &wh.URL, &wh.Events, &wh.IsActive, &wh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert webhook: %w", err)
	}

	// Return secret only on creation
	wh.Secret = secret

	return &wh, nil
}

func (s *Service) List(ctx context.Context) ([]models.Webhook, error) {
	tenantID := tenant.IDFromContext(ctx)

	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, url, events, is_active, created_at
		 FROM webhooks WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []models.Webhook
	for rows.Next() {
		var wh models.Webhook
		if err := rows.Scan(&wh.ID, &wh.TenantID, &wh.URL, &wh.Events, &wh.IsActive, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID := tenant.IDFromContext(ctx)
	_, err := s.db.Exec(ctx, "DELETE FROM webhooks WHERE id = $1 AND tenant_id = $2", id, tenantID)
	return err
}

// Dispatch fans an event out to every active subscription of the tenant that
// asked for it. Deliveries run out of band; Dispatch returns once they are
// queued.
func (s *Service) Dispatch(ctx context.Context, event string, payload interface{}) error {
	if s.enqueuer == nil {
		return nil
	}

	tenantID := tenant.IDFromContext(ctx)

	rows, err := s.db.Query(ctx,
		`SELECT id, url, secret FROM webhooks
		 WHERE tenant_id = $1 AND is_active = true AND events @> $2::jsonb`,
		tenantID, fmt.Sprintf(`["%s"]`, event),
	)
	if err != nil {
		return fmt.Errorf("find matching webhooks: %w", err)
	}
	defer rows.Close()

	payloadJSON, _ := json.Marshal(payload)

	for rows.Next() {
		var id uuid.UUID
		var u, secret string
		if err := rows.Scan(&id, &u, &secret); err != nil {
			continue
		}

		if err := s.enqueuer.EnqueueWebhookDelivery(ctx, DeliveryRequest{
			WebhookID: id,
			URL:       u,
			Secret:    secret,
			Event:     event,
			Payload:   payloadJSON,
		}); err != nil {
			return fmt.Errorf("enqueue webhook delivery: %w", err)
		}
	}
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}
