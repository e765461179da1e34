package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rukioi/legalflow/internal/webhook"
)

type WebhookWorker struct {
	deliverer *webhook.Deliverer
}

func NewWebhookWorker(deliverer *webhook.Deliverer) *WebhookWorker {
	return &WebhookWorker{deliverer: deliverer}
}

func (w *WebhookWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var req webhook.DeliveryRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("delivering webhook", "webhook_id", req.WebhookID, "event", req.Event)

	if err := w.deliverer.Deliver(ctx, req); err != nil {
		return err
	}

	slog.Info("webhook delivered", "webhook_id", req.WebhookID, "event", req.Event)
	return nil
}
