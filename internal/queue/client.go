package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rukioi/legalflow/internal/config"
	"github.com/rukioi/legalflow/internal/webhook"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueWebhookDelivery(ctx context.Context, req webhook.DeliveryRequest) error {
	return c.enqueue(ctx, TypeWebhookDeliver, req, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
}

func (c *Client) EnqueueInvoiceOverdueScan(ctx context.Context) error {
	return c.enqueue(ctx, TypeInvoiceOverdueScan, InvoiceOverdueScanPayload{},
		asynq.MaxRetry(1), asynq.Timeout(5*time.Minute))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
