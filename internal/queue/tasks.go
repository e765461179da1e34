package queue

const (
	TypeWebhookDeliver     = "webhook:deliver"
	TypeInvoiceOverdueScan = "invoice:overdue_scan"
)

// InvoiceOverdueScanPayload is empty: the scan always walks every active
// tenant. It exists so the task keeps a stable JSON shape if filters are
// added later.
type InvoiceOverdueScanPayload struct{}
