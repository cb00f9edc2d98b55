package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"

	"marketplace/internal/usecase"
)

type PaymentHandler struct {
	uc            *usecase.PaymentUsecase
	webhookSecret string
	logger        *zap.Logger
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, webhookSecret: webhookSecret, logger: logger}
}

type CreateIntentRequest struct {
	OrderID int64 `json:"order_id"`
}

type CreateIntentResponse struct {
	TransactionID string `json:"transaction_id"`
	ClientSecret  string `json:"client_secret"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/payments/intent", h.createIntent)
	e.POST("/webhooks/stripe", h.stripeWebhook)
}

func (h *PaymentHandler) createIntent(c echo.Context) error {
	var req CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.OrderID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
	}

	intent, err := h.uc.CreatePaymentIntent(c.Request().Context(), req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, CreateIntentResponse{
		TransactionID: intent.ID,
		ClientSecret:  intent.ClientSecret,
	})
}

// Stripeからの署名付きWebhook。
// 署名が検証できないペイロードは一切適用せず破棄する。
// 検証後の処理エラーは飲み込んで200を返す（Stripe側のリトライに任せる）。
func (h *PaymentHandler) stripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	transactionID, ok := event.Data.Object["id"].(string)
	if !ok || transactionID == "" {
		h.logger.Warn("webhook event without object id", zap.String("event_type", string(event.Type)))
		return c.NoContent(http.StatusOK)
	}

	h.uc.HandleWebhookEvent(c.Request().Context(), string(event.Type), transactionID)
	return c.NoContent(http.StatusOK)
}
