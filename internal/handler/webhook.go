package handler

import (
	"fmt"
	"io"
	"net/http"

	"cryptobot-webhook-relay/internal/client"
	"cryptobot-webhook-relay/internal/dto"
	"cryptobot-webhook-relay/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	paymentService service.PaymentService
}

func NewWebhookHandler(paymentService service.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

func (h *WebhookHandler) CryptoPayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	signature := c.Request().Header.Get(client.SignatureHeader)

	if err := h.paymentService.HandleWebhook(ctx, signature, body); err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.JSON(http.StatusOK, &dto.StatusResponse{Status: dto.StatusSuccess})
}

func (h *WebhookHandler) ListWebhooks(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	events, err := h.paymentService.ListWebhookEvents(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}

	return c.JSON(http.StatusOK, &dto.WebhookListResponse{
		Status:   dto.StatusSuccess,
		Webhooks: events,
	})
}
