package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/config"
	"cryptobot-webhook-relay/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cryptoPayService = "cryptopay"

type CryptoPayClient interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, error)
	VerifyWebhookSignature(body []byte, signature string) error
}

type cryptoPayClientImpl struct {
	httpClient         *http.Client
	log                *zap.Logger
	baseApiURL         string
	apiToken           string
	paidButtonURL      string
	defaultDescription string
}

type CreateInvoiceRequest struct {
	UserID      string
	Amount      decimal.Decimal
	Asset       string
	Description string
}

type CreateInvoiceResponse struct {
	InvoiceID     string
	BotInvoiceURL string
	// RequestPayload is the exact body sent to the gateway.
	RequestPayload json.RawMessage
}

type createInvoiceBody struct {
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	PaidBtnName string `json:"paid_btn_name"`
	PaidBtnURL  string `json:"paid_btn_url"`
	Payload     string `json:"payload"`
}

type invoicePayload struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type cryptoPayError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type cryptoPayInvoiceResult struct {
	InvoiceID     model.FlexibleID `json:"invoice_id"`
	Status        string           `json:"status"`
	BotInvoiceURL string           `json:"bot_invoice_url"`
	PayURL        string           `json:"pay_url"`
}

type cryptoPayResponse struct {
	OK     bool                    `json:"ok"`
	Result *cryptoPayInvoiceResult `json:"result"`
	Error  *cryptoPayError         `json:"error"`
}

func NewCryptoPayClient(cfg *config.CryptoPay, timeout time.Duration, log *zap.Logger) CryptoPayClient {
	return &cryptoPayClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:                log.Named(cryptoPayService),
		baseApiURL:         strings.TrimRight(cfg.BaseApiURL, "/"),
		apiToken:           cfg.APIToken,
		paidButtonURL:      cfg.PaidButtonURL,
		defaultDescription: cfg.DefaultDescription,
	}
}

func (c *cryptoPayClientImpl) VerifyWebhookSignature(body []byte, signature string) error {
	if !VerifyWebhook(c.apiToken, body, signature) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}

func (c *cryptoPayClientImpl) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, error) {
	amount := req.Amount.String()

	description := req.Description
	if description == "" {
		description = c.defaultDescription
	}

	payload, err := json.Marshal(&invoicePayload{UserID: req.UserID, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("marshal invoice payload: %w", err)
	}

	body, err := json.Marshal(&createInvoiceBody{
		Asset:       req.Asset,
		Amount:      amount,
		Description: description,
		PaidBtnName: "callback",
		PaidBtnURL: strings.NewReplacer(
			"{user_id}", req.UserID,
			"{amount}", amount,
		).Replace(c.paidButtonURL),
		Payload: string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/createInvoice", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Crypto-Pay-API-Token", c.apiToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Err: err}
	}

	var result cryptoPayResponse
	decodeErr := json.Unmarshal(respBody, &result)

	// a well-formed error body wins over the HTTP status
	if decodeErr == nil && !result.OK && result.Error != nil {
		c.log.Error("create invoice rejected",
			zap.Int("status", resp.StatusCode),
			zap.Int("code", result.Error.Code),
			zap.String("error", result.Error.Name),
		)
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Message: result.Error.Name}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("create invoice http error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, StatusCode: resp.StatusCode}
	}

	if decodeErr != nil {
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Message: "malformed response", Err: decodeErr}
	}
	if !result.OK || result.Result == nil {
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Message: "Unknown error"}
	}
	if result.Result.InvoiceID == "" {
		return nil, &apperrors.UpstreamError{Service: cryptoPayService, Message: "missing invoice_id"}
	}

	paymentURL := result.Result.BotInvoiceURL
	if paymentURL == "" {
		paymentURL = result.Result.PayURL
	}

	return &CreateInvoiceResponse{
		InvoiceID:      result.Result.InvoiceID.String(),
		BotInvoiceURL:  paymentURL,
		RequestPayload: body,
	}, nil
}
