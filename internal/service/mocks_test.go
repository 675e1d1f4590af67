package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/client"
	"cryptobot-webhook-relay/internal/metrics"
	"cryptobot-webhook-relay/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testToken = "12345:AAzQcZWQqQAbsfgPnOLr4FHC8Doa4L7KryC"

// mockCryptoPayClient verifies signatures for real and records invoice
// creation calls.
type mockCryptoPayClient struct {
	mock.Mock
	token string
}

func (m *mockCryptoPayClient) CreateInvoice(ctx context.Context, req *client.CreateInvoiceRequest) (*client.CreateInvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CreateInvoiceResponse), args.Error(1)
}

func (m *mockCryptoPayClient) VerifyWebhookSignature(body []byte, signature string) error {
	if !client.VerifyWebhook(m.token, body, signature) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}

type mockTelegramClient struct {
	mock.Mock
}

func (m *mockTelegramClient) SendMessage(ctx context.Context, msg *client.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockTelegramClient) UpdateBalance(ctx context.Context, userID string, amount decimal.Decimal) error {
	return m.Called(ctx, userID, amount).Error(0)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) error {
	return m.Called(ctx, invoiceID, paidAt).Error(0)
}

func (m *mockInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*model.Invoice, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invoice), args.Error(1)
}

type mockWebhookEventRepo struct {
	mock.Mock
}

func (m *mockWebhookEventRepo) Create(ctx context.Context, event *model.WebhookEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockWebhookEventRepo) List(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WebhookEvent), args.Error(1)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Invoice{}, &model.WebhookEvent{}))
	return db
}
