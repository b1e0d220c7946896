package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"dojohub/internal/logging"
	"dojohub/internal/services"
)

// maxWebhookBody bounds provider notification bodies.
const maxWebhookBody = 1 << 20

// WebhookHandlers receives payment provider notifications. Both endpoints
// are unauthenticated; Mercado Pago requests carry an HMAC signature and
// Flow tokens are verified by querying Flow.
type WebhookHandlers struct {
	paymentService services.PaymentService
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(paymentService services.PaymentService) *WebhookHandlers {
	return &WebhookHandlers{paymentService: paymentService}
}

type mercadoPagoBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		// Mercado Pago sends the id as a string or a number depending on the topic.
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// MercadoPago handles POST /v1/webhooks/mercadopago. The topic and data id
// are read from the query string first, as Mercado Pago signs those, and
// then from the JSON body.
func (h *WebhookHandlers) MercadoPago(c echo.Context) error {
	req := c.Request()

	n := &services.MercadoPagoNotification{
		Signature: req.Header.Get("x-signature"),
		RequestID: req.Header.Get("x-request-id"),
		Topic:     firstNonEmpty(c.QueryParam("type"), c.QueryParam("topic")),
		DataID:    firstNonEmpty(c.QueryParam("data.id"), c.QueryParam("id")),
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		var payload mercadoPagoBody
		if err := json.Unmarshal(body, &payload); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification payload")
		}
		n.Topic = firstNonEmpty(n.Topic, payload.Type)
		n.DataID = firstNonEmpty(n.DataID, strings.Trim(string(payload.Data.ID), `"`))
	}

	if err := h.paymentService.HandleMercadoPagoNotification(req.Context(), n); err != nil {
		logging.Ctx(req.Context()).Warn().Err(err).
			Str("topic", n.Topic).
			Str("data_id", n.DataID).
			Msg("mercado pago notification rejected")
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Flow handles POST /v1/webhooks/flow, a form post carrying "token".
func (h *WebhookHandlers) Flow(c echo.Context) error {
	token := c.FormValue("token")
	if err := h.paymentService.HandleFlowConfirmation(c.Request().Context(), token); err != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(err).Msg("flow confirmation rejected")
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
