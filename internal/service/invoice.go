package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/client"
	"cryptobot-webhook-relay/internal/dto"
	"cryptobot-webhook-relay/internal/metrics"
	"cryptobot-webhook-relay/internal/model"
	"cryptobot-webhook-relay/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultAsset = "USDT"

	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, amount decimal.Decimal, asset string) (*dto.CreateInvoiceResponse, error)
	ListInvoices(ctx context.Context, limit, offset int) ([]*model.Invoice, error)
}

type invoiceServiceImpl struct {
	log             *zap.Logger
	metrics         *metrics.Metrics
	cryptoPayClient client.CryptoPayClient
	invoiceRepo     repository.InvoiceRepository
	now             func() time.Time
}

func NewInvoiceService(
	log *zap.Logger,
	m *metrics.Metrics,
	cryptoPayClient client.CryptoPayClient,
	invoiceRepo repository.InvoiceRepository,
) InvoiceService {
	return &invoiceServiceImpl{
		log:             log.Named("invoice"),
		metrics:         m,
		cryptoPayClient: cryptoPayClient,
		invoiceRepo:     invoiceRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvoice asks the gateway for a new invoice and stores it as active.
// Nothing is stored when the gateway call fails.
func (s *invoiceServiceImpl) CreateInvoice(ctx context.Context, userID string, amount decimal.Decimal, asset string) (*dto.CreateInvoiceResponse, error) {
	if !amount.IsPositive() {
		s.metrics.ObserveInvoiceCreation(metrics.InvoiceRejected)
		return nil, apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(userID) == "" {
		s.metrics.ObserveInvoiceCreation(metrics.InvoiceRejected)
		return nil, apperrors.ErrInvalidUserID
	}

	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		asset = DefaultAsset
	}

	log := s.log.With(
		zap.String("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("asset", asset),
	)
	log.Info("creating invoice")

	resp, err := s.cryptoPayClient.CreateInvoice(ctx, &client.CreateInvoiceRequest{
		UserID: userID,
		Amount: amount,
		Asset:  asset,
	})
	if err != nil {
		var upstream *apperrors.UpstreamError
		if errors.As(err, &upstream) {
			s.metrics.ObserveInvoiceCreation(metrics.InvoiceUpstream)
		} else {
			s.metrics.ObserveInvoiceCreation(metrics.InvoiceFailed)
		}
		log.Error("gateway create invoice", zap.Error(err))
		return nil, fmt.Errorf("create gateway invoice: %w", err)
	}

	err = s.invoiceRepo.Create(ctx, &model.Invoice{
		InvoiceID:      resp.InvoiceID,
		UserID:         userID,
		Amount:         amount,
		Asset:          asset,
		CreatedAt:      s.now(),
		RequestPayload: []byte(resp.RequestPayload),
	})
	if err != nil {
		s.metrics.ObserveInvoiceCreation(metrics.InvoiceFailed)
		log.Error("save invoice", zap.String("invoice_id", resp.InvoiceID), zap.Error(err))
		return nil, fmt.Errorf("store invoice in db: %w", err)
	}

	log.Info("invoice created", zap.String("invoice_id", resp.InvoiceID))
	s.metrics.ObserveInvoiceCreation(metrics.InvoiceCreated)

	return &dto.CreateInvoiceResponse{
		Status:        dto.StatusSuccess,
		InvoiceID:     resp.InvoiceID,
		PaymentURL:    resp.BotInvoiceURL,
		BotInvoiceURL: resp.BotInvoiceURL,
	}, nil
}

func (s *invoiceServiceImpl) ListInvoices(ctx context.Context, limit, offset int) ([]*model.Invoice, error) {
	limit, err := normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	return s.invoiceRepo.List(ctx, limit, offset)
}

func normalizePage(limit, offset int) (int, error) {
	if limit < 0 || offset < 0 {
		return 0, apperrors.ErrInvalidPagination
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return limit, nil
}
