package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/dto"
	"cryptobot-webhook-relay/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Param("user_id")
	if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
		return apperrors.ErrInvalidUserID
	}

	amount, err := decimal.NewFromString(c.Param("amount"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be a number")
	}

	result, err := h.invoiceService.CreateInvoice(ctx, userID, amount, c.QueryParam("asset"))
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	invoices, err := h.invoiceService.ListInvoices(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}

	return c.JSON(http.StatusOK, &dto.InvoiceListResponse{
		Status:   dto.StatusSuccess,
		Invoices: invoices,
	})
}

// pageParams reads limit and offset, defaulting to the first page.
func pageParams(c echo.Context) (int, int, error) {
	limit, offset := service.DefaultPageLimit, 0

	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.ErrInvalidPagination
		}
		limit = v
	}
	if raw := c.QueryParam("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.ErrInvalidPagination
		}
		offset = v
	}

	return limit, offset, nil
}
