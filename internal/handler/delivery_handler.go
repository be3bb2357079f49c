package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// DeliveryHandler handles delivery tracking requests.
type DeliveryHandler struct {
	service service.DeliveryService
	logger  zerolog.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(service service.DeliveryService, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
		logger:  logger.With().Str("handler", "delivery").Logger(),
	}
}

// Track handles GET /api/deliveries/{id}/track requests.
func (h *DeliveryHandler) Track(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	tracking, err := h.service.Track(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tracking)
}

// UpdateStatus handles PUT /api/deliveries/{id}/status requests.
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.DeliveryStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	delivery, err := h.service.UpdateStatus(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}
