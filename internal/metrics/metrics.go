package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	WebhookAccepted = "accepted"
	WebhookRejected = "rejected"
	WebhookInvalid  = "invalid"
	WebhookFailed   = "failed"
)

const (
	ReconcilePaid      = "paid"
	ReconcileDuplicate = "duplicate"
	ReconcileOrphaned  = "orphaned"
	ReconcileIgnored   = "ignored"
	ReconcileFailed    = "failed"
)

const (
	NotificationBalance = "balance"
	NotificationMessage = "message"
)

const (
	InvoiceCreated  = "created"
	InvoiceRejected = "rejected"
	InvoiceUpstream = "upstream_error"
	InvoiceFailed   = "failed"
)

// Metrics holds the relay's prometheus instruments.
type Metrics struct {
	webhooks        *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	auditFailures   prometheus.Counter
	invoices        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "webhooks_total",
			Help:      "Inbound gateway webhooks by outcome.",
		}, []string{"outcome"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "reconciliations_total",
			Help:      "Invoice reconciliation results.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "notifications_total",
			Help:      "Messaging platform calls by kind and result.",
		}, []string{"kind", "result"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "audit_write_failures_total",
			Help:      "Webhook events that could not be written to the audit log.",
		}),
		invoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "invoice_creations_total",
			Help:      "Invoice creation requests by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.webhooks, m.reconciliations, m.notifications, m.auditFailures, m.invoices)
	return m
}

func (m *Metrics) ObserveWebhook(outcome string) {
	m.webhooks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveReconciliation(result string) {
	m.reconciliations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveNotification(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveAuditFailure() {
	m.auditFailures.Inc()
}

func (m *Metrics) ObserveInvoiceCreation(result string) {
	m.invoices.WithLabelValues(result).Inc()
}
