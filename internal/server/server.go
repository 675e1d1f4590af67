package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/dto"
	"cryptobot-webhook-relay/internal/handler"
	appmw "cryptobot-webhook-relay/internal/middleware"
	"cryptobot-webhook-relay/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const Version = "1.0.0"

const maxBodySize = "1M"

type Server struct {
	echo           *echo.Echo
	log            *zap.Logger
	apiKey         string
	gatherer       prometheus.Gatherer
	webhookHandler *handler.WebhookHandler
	invoiceHandler *handler.InvoiceHandler
}

func NewServer(
	log *zap.Logger,
	apiKey string,
	gatherer prometheus.Gatherer,
	paymentService service.PaymentService,
	invoiceService service.InvoiceService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:           e,
		log:            log.Named("http"),
		apiKey:         apiKey,
		gatherer:       gatherer,
		webhookHandler: handler.NewWebhookHandler(paymentService),
		invoiceHandler: handler.NewInvoiceHandler(invoiceService),
	}

	e.HTTPErrorHandler = s.errorHandler

	e.Use(appmw.RequestLogger(s.log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxBodySize))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.info)
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, &dto.HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		})
	})
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// -------- gateway callbacks --------
	s.echo.POST("/webhook", s.webhookHandler.CryptoPayWebhook)

	// -------- operator API --------
	auth := appmw.APIKeyAuth(s.apiKey)
	s.echo.POST("/create-invoice/:user_id/:amount", s.invoiceHandler.CreateInvoice, auth)
	s.echo.GET("/invoices", s.invoiceHandler.ListInvoices, auth)
	s.echo.GET("/webhooks", s.webhookHandler.ListWebhooks, auth)
}

func (s *Server) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Crypto Pay webhook relay",
		"version": Version,
		"endpoints": map[string]string{
			"webhook":        "POST /webhook",
			"create_invoice": "POST /create-invoice/{user_id}/{amount}",
			"invoices":       "GET /invoices",
			"webhooks":       "GET /webhooks",
			"health":         "GET /health",
			"metrics":        "GET /metrics",
		},
	})
}

// errorHandler renders every failure as {"status":"error","message":...}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, &dto.ErrorResponse{Status: dto.StatusError, Message: message})
	}
	if writeErr != nil {
		s.log.Warn("write error response", zap.Error(writeErr))
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	var upstream *apperrors.UpstreamError
	switch {
	case errors.Is(err, apperrors.ErrInvalidSignature),
		errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrInvalidPayload),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidUserID),
		errors.Is(err, apperrors.ErrInvalidPagination):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvoiceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &upstream):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be driven directly by tests and embedding code.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
