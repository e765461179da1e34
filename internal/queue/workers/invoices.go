package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rukioi/legalflow/internal/invoices"
	"github.com/rukioi/legalflow/internal/tenant"
	"github.com/rukioi/legalflow/internal/webhook"
)

// InvoiceWorker flips sent invoices past their due date to overdue. It walks
// every active tenant; a failure in one schema is logged and does not stop
// the scan.
type InvoiceWorker struct {
	tenants    *tenant.Service
	invoiceSvc *invoices.Service
	webhookSvc *webhook.Service
}

func NewInvoiceWorker(tenants *tenant.Service, invoiceSvc *invoices.Service, webhookSvc *webhook.Service) *InvoiceWorker {
	return &InvoiceWorker{
		tenants:    tenants,
		invoiceSvc: invoiceSvc,
		webhookSvc: webhookSvc,
	}
}

func (w *InvoiceWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	started := time.Now()

	active, err := w.tenants.ListActive(ctx)
	if err != nil {
		return err
	}

	var total int64
	for i := range active {
		tn := &active[i]

		db, err := tenant.BindDB(w.tenants.Pool(), tn)
		if err != nil {
			slog.Warn("overdue scan: skipping tenant", "tenant_id", tn.ID, "error", err)
			continue
		}

		n, err := w.invoiceSvc.MarkOverdue(ctx, db)
		if err != nil {
			slog.Warn("overdue scan failed for tenant", "tenant_id", tn.ID, "error", err)
			continue
		}
		if n == 0 {
			continue
		}
		total += n

		tctx := tenant.WithTenant(ctx, tn)
		if w.webhookSvc != nil {
			if err := w.webhookSvc.Dispatch(tctx, "invoice.overdue", map[string]interface{}{
				"tenant_id": tn.ID,
				"count":     n,
			}); err != nil {
				slog.Warn("overdue webhook dispatch failed", "tenant_id", tn.ID, "error", err)
			}
		}
	}

	slog.Info("overdue scan complete",
		"tenants", len(active),
		"invoices_marked", total,
		"elapsed", time.Since(started),
	)
	return nil
}
