package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type InvoiceStatus string

const (
	InvoiceStatusActive InvoiceStatus = "active"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Invoice is created through the gateway and settled by an invoice_paid
// webhook. PaidAt is set iff Status is paid.
type Invoice struct {
	InvoiceID      string          `gorm:"primaryKey;size:64;not null" json:"invoice_id"` // gateway invoice id
	UserID         string          `gorm:"size:32;index;not null" json:"user_id"`         // telegram chat id
	Amount         decimal.Decimal `gorm:"type:varchar(64);not null" json:"amount"`
	Asset          string          `gorm:"size:16;not null" json:"asset"`
	Status         InvoiceStatus   `gorm:"size:16;index;not null" json:"status"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	PaidAt         *time.Time      `json:"paid_at"`
	RequestPayload datatypes.JSON  `json:"payload,omitempty"` // body sent to the gateway
}

// WebhookEvent is an append-only audit row, one per verified delivery.
type WebhookEvent struct {
	ID         string         `gorm:"primaryKey;size:36;not null" json:"id"` // uuid v7
	UpdateID   string         `gorm:"size:64;index" json:"update_id"`
	UpdateType string         `gorm:"size:64;index" json:"update_type"`
	InvoiceID  *string        `gorm:"size:64;index" json:"invoice_id"`
	Status     string         `gorm:"size:32" json:"status"`
	RawPayload datatypes.JSON `gorm:"not null" json:"payload"`
	ReceivedAt time.Time      `gorm:"index;not null" json:"received_at"`
}
