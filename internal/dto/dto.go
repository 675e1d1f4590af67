package dto

import (
	"time"

	"cryptobot-webhook-relay/internal/model"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CreateInvoiceResponse struct {
	Status        string `json:"status"`
	InvoiceID     string `json:"invoice_id"`
	PaymentURL    string `json:"payment_url"`
	BotInvoiceURL string `json:"bot_invoice_url"`
}

type InvoiceListResponse struct {
	Status   string           `json:"status"`
	Invoices []*model.Invoice `json:"invoices"`
}

type WebhookListResponse struct {
	Status   string                `json:"status"`
	Webhooks []*model.WebhookEvent `json:"webhooks"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
