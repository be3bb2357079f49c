package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler receives payment confirmations from the gateway.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Webhook handles POST /api/payments/webhook requests. It is unauthenticated;
// the gateway signature is the credential.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentWebhookRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
