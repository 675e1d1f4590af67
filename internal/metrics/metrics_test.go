package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveWebhook(WebhookAccepted)
	m.ObserveWebhook(WebhookAccepted)
	m.ObserveWebhook(WebhookRejected)
	m.ObserveReconciliation(ReconcilePaid)
	m.ObserveNotification(NotificationBalance, nil)
	m.ObserveNotification(NotificationMessage, errors.New("blocked"))
	m.ObserveAuditFailure()
	m.ObserveInvoiceCreation(InvoiceCreated)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhooks.WithLabelValues(WebhookAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhooks.WithLabelValues(WebhookRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciliations.WithLabelValues(ReconcilePaid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationBalance, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationMessage, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invoices.WithLabelValues(InvoiceCreated)))
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
