package repository

import (
	"context"
	"errors"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/model"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*model.Invoice, error)
}

type invoiceRepoImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepoImpl{
		db: db,
	}
}

// Create inserts a new active invoice.
func (r *invoiceRepoImpl) Create(ctx context.Context, invoice *model.Invoice) error {
	invoice.Status = model.InvoiceStatusActive
	invoice.PaidAt = nil
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepoImpl) FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&invoice).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

// MarkPaid moves an active invoice to paid. It returns ErrInvoiceAlreadyPaid
// when no active row matched, so among concurrent callers exactly one gets nil.
func (r *invoiceRepoImpl) MarkPaid(ctx context.Context, invoiceID string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where(`
			invoice_id = ?
			AND status = ?
		`,
			invoiceID,
			model.InvoiceStatusActive,
		).
		Updates(map[string]interface{}{
			"status":  model.InvoiceStatusPaid,
			"paid_at": paidAt.UTC(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInvoiceAlreadyPaid
	}

	return nil
}

// List returns invoices newest first.
func (r *invoiceRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Invoice, error) {
	invoices := make([]*model.Invoice, 0)
	if limit == 0 {
		return invoices, nil
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("invoice_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&invoices).Error

	if err != nil {
		return nil, err
	}

	return invoices, nil
}
