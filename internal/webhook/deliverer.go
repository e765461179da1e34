package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deliverer performs a single signed POST to a subscriber and records the
// attempt. Retries are the caller's concern; a failed attempt returns an
// error so the task queue can reschedule it.
type Deliverer struct {
	db         *pgxpool.Pool
	httpClient *http.Client
}

func NewDeliverer(db *pgxpool.Pool) *Deliverer {
	return &Deliverer{
		db: db,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (d *Deliverer) Deliver(ctx context.Context, req DeliveryRequest) error {
	signature := Sign(req.Payload, req.Secret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Payload))
	if err != nil {
		d.recordDelivery(ctx, req, 0)
		return fmt.Errorf("build webhook request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", req.Event)
	httpReq.Header.Set("X-Webhook-Signature", signature)
	httpReq.Header.Set("X-Webhook-ID", req.WebhookID.String())

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.recordDelivery(ctx, req, 0)
		return fmt.Errorf("deliver webhook %s: %w", req.WebhookID, err)
	}
	defer resp.Body.Close()

	d.recordDelivery(ctx, req, resp.StatusCode)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s responded %d", req.WebhookID, resp.StatusCode)
	}
	return nil
}

func (d *Deliverer) recordDelivery(ctx context.Context, req DeliveryRequest, status int) {
	var deliveredAt *time.Time
	if status > 0 && status < 400 {
		now := time.Now()
		deliveredAt = &now
	}

	_, err := d.db.Exec(ctx,
		`INSERT INTO webhook_deliveries (webhook_id, event, payload, response_status, attempts, delivered_at)
		 VALUES ($1, $2, $3, $4, 1, $5)`,
		req.WebhookID, req.Event, req.Payload, status, deliveredAt,
	)
	if err != nil {
		slog.Error("failed to record webhook delivery", "error", err)
	}
}

// Sign computes the signature subscribers use to verify the payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
