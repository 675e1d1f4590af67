package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/client"
	"cryptobot-webhook-relay/internal/metrics"
	"cryptobot-webhook-relay/internal/model"
	"cryptobot-webhook-relay/internal/repository"

	"go.uber.org/zap"
)

type PaymentService interface {
	HandleWebhook(ctx context.Context, signature string, body []byte) error
	ListWebhookEvents(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error)
}

type paymentServiceImpl struct {
	log              *zap.Logger
	metrics          *metrics.Metrics
	cryptoPayClient  client.CryptoPayClient
	telegramClient   client.TelegramClient
	invoiceRepo      repository.InvoiceRepository
	webhookEventRepo repository.WebhookEventRepository
	notifyTimeout    time.Duration
	now              func() time.Time
}

func NewPaymentService(
	log *zap.Logger,
	m *metrics.Metrics,
	cryptoPayClient client.CryptoPayClient,
	telegramClient client.TelegramClient,
	invoiceRepo repository.InvoiceRepository,
	webhookEventRepo repository.WebhookEventRepository,
	notifyTimeout time.Duration,
) PaymentService {
	return &paymentServiceImpl{
		log:              log.Named("payment"),
		metrics:          m,
		cryptoPayClient:  cryptoPayClient,
		telegramClient:   telegramClient,
		invoiceRepo:      invoiceRepo,
		webhookEventRepo: webhookEventRepo,
		notifyTimeout:    notifyTimeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// HandleWebhook verifies a gateway delivery, writes it to the audit log and
// reconciles invoice_paid updates. Nothing is stored or sent for a delivery
// that fails verification.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if !json.Valid(body) {
		s.metrics.ObserveWebhook(metrics.WebhookInvalid)
		return fmt.Errorf("decode webhook payload: %w", apperrors.ErrInvalidPayload)
	}

	if err := s.cryptoPayClient.VerifyWebhookSignature(body, signature); err != nil {
		s.log.Warn("webhook signature rejected", zap.Bool("signature_present", signature != ""))
		s.metrics.ObserveWebhook(metrics.WebhookRejected)
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	update := model.ParseCryptoPayUpdate(body)

	s.log.Info("webhook received",
		zap.String("update_id", update.UpdateID),
		zap.String("update_type", update.UpdateType),
		zap.String("invoice_id", update.InvoiceID),
		zap.String("status", update.Status),
	)

	s.recordEvent(ctx, update, body)

	if !update.IsInvoicePaid() {
		s.metrics.ObserveReconciliation(metrics.ReconcileIgnored)
		s.metrics.ObserveWebhook(metrics.WebhookAccepted)
		return nil
	}

	if err := s.handleInvoicePaid(ctx, update.InvoiceID); err != nil {
		s.metrics.ObserveReconciliation(metrics.ReconcileFailed)
		s.metrics.ObserveWebhook(metrics.WebhookFailed)
		return err
	}

	s.metrics.ObserveWebhook(metrics.WebhookAccepted)
	return nil
}

// recordEvent writes the audit row. A failed write is logged and processing
// continues without it.
func (s *paymentServiceImpl) recordEvent(ctx context.Context, update *model.CryptoPayUpdate, body []byte) {
	event := &model.WebhookEvent{
		UpdateID:   update.UpdateID,
		UpdateType: update.UpdateType,
		Status:     update.Status,
		RawPayload: body,
		ReceivedAt: s.now(),
	}
	if invoiceID := update.InvoiceID; invoiceID != "" {
		event.InvoiceID = &invoiceID
	}

	if err := s.webhookEventRepo.Create(ctx, event); err != nil {
		s.metrics.ObserveAuditFailure()
		s.log.Error("save webhook event",
			zap.String("update_id", event.UpdateID),
			zap.Error(err),
		)
	}
}

func (s *paymentServiceImpl) handleInvoicePaid(ctx context.Context, invoiceID string) error {
	log := s.log.With(zap.String("invoice_id", invoiceID))

	if invoiceID == "" {
		log.Warn("invoice_paid update without invoice_id")
		s.metrics.ObserveReconciliation(metrics.ReconcileOrphaned)
		return nil
	}

	invoice, err := s.invoiceRepo.FindByInvoiceID(ctx, invoiceID)
	if errors.Is(err, apperrors.ErrInvoiceNotFound) {
		log.Warn("invoice not found, ignoring paid update")
		s.metrics.ObserveReconciliation(metrics.ReconcileOrphaned)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}

	if invoice.Status == model.InvoiceStatusPaid {
		log.Info("invoice already paid, skipping notifications")
		s.metrics.ObserveReconciliation(metrics.ReconcileDuplicate)
		return nil
	}

	paidAt := s.now()
	err = s.invoiceRepo.MarkPaid(ctx, invoiceID, paidAt)
	if errors.Is(err, apperrors.ErrInvoiceAlreadyPaid) {
		log.Info("invoice paid by a concurrent delivery, skipping notifications")
		s.metrics.ObserveReconciliation(metrics.ReconcileDuplicate)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}

	invoice.Status = model.InvoiceStatusPaid
	invoice.PaidAt = &paidAt

	log.Info("invoice paid",
		zap.String("user_id", invoice.UserID),
		zap.String("amount", invoice.Amount.String()),
		zap.String("asset", invoice.Asset),
	)
	s.metrics.ObserveReconciliation(metrics.ReconcilePaid)

	s.notifyPaid(ctx, invoice)
	return nil
}

// notifyPaid credits the user and sends the confirmation once the paid state
// is stored. Failures are logged only. Both calls share notifyTimeout.
func (s *paymentServiceImpl) notifyPaid(ctx context.Context, invoice *model.Invoice) {
	ctx = context.WithoutCancel(ctx)
	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
	}
	log := s.log.With(zap.String("invoice_id", invoice.InvoiceID), zap.String("user_id", invoice.UserID))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := s.telegramClient.UpdateBalance(ctx, invoice.UserID, invoice.Amount)
		s.metrics.ObserveNotification(metrics.NotificationBalance, err)
		if err != nil {
			log.Error("update user balance", zap.Error(err))
		}
	}()

	go func() {
		defer wg.Done()
		err := s.telegramClient.SendMessage(ctx, paidConfirmation(invoice))
		s.metrics.ObserveNotification(metrics.NotificationMessage, err)
		if err != nil {
			log.Error("send payment confirmation", zap.Error(err))
		}
	}()

	wg.Wait()
}

func paidConfirmation(invoice *model.Invoice) *client.Message {
	amount := invoice.Amount.String()

	return &client.Message{
		ChatID:    invoice.UserID,
		Text:      fmt.Sprintf("✅ Your balance has been topped up by <b>%s %s</b>!", amount, invoice.Asset),
		ParseMode: "HTML",
		ReplyMarkup: &client.InlineKeyboardMarkup{
			InlineKeyboard: [][]client.InlineKeyboardButton{
				{
					{Text: "🎮 Play", CallbackData: "play_game"},
					{Text: "💰 Deposit more", CallbackData: "redeposit_" + amount},
				},
			},
		},
	}
}

func (s *paymentServiceImpl) ListWebhookEvents(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error) {
	limit, err := normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	return s.webhookEventRepo.List(ctx, limit, offset)
}
