package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 16

// handleStripeWebhook verifies the payload signature over the raw body and
// hands the event to the reconciler. After a valid signature the response is
// always 200; per-event failures are logged, never surfaced.
func (s *Server) handleStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(http.MaxBytesReader(nil, c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("unreadable payload"))
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		s.log.Warn("webhook signature rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, errorBody("invalid signature"))
	}

	s.reconciler.Apply(c.Request().Context(), &event)
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
